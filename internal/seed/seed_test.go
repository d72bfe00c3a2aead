package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Jomoregie1/greetingapi/internal/models"
)

// recorder accepts each message once.
type recorder struct {
	seen map[string]bool
	rows []models.Greeting
	err  error
}

func (r *recorder) InsertGreeting(_ context.Context, g *models.Greeting) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if r.seen == nil {
		r.seen = map[string]bool{}
	}
	if r.seen[g.Message] {
		return false, nil
	}
	r.seen[g.Message] = true
	r.rows = append(r.rows, *g)
	return true, nil
}

func TestDecode(t *testing.T) {
	entries, err := Decode(strings.NewReader(`[
		{"message": "Happy birthday, Dad!", "category": "Birthday_Dad"},
		{"message": "Good morning, love", "category": "Morning_Romantic"}
	]`))
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Message: "Happy birthday, Dad!", Category: "Birthday_Dad"},
		{Message: "Good morning, love", Category: "Morning_Romantic"},
	}, entries)

	_, err = Decode(strings.NewReader(`{"message": "not an array"}`))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	db := &recorder{}
	res, err := Load(context.Background(), db, []Entry{
		{Message: "  Happy birthday, Dad!  ", Category: "Birthday_Dad"},
		{Message: "Merry Christmas", Category: "Christmas_General"},
		{Message: "Happy birthday, Dad!", Category: "Birthday_Dad"},
	})
	require.NoError(t, err)
	require.Equal(t, Result{Inserted: 2, Skipped: 1}, res)

	require.Equal(t, "Happy birthday, Dad!", db.rows[0].Message)
	require.Equal(t, "birthday-to-dad-messages", *db.rows[0].Type)
	require.Equal(t, "christmas-messages", *db.rows[1].Type)
}

func TestLoad_ValidatesBeforeWriting(t *testing.T) {
	db := &recorder{}

	_, err := Load(context.Background(), db, []Entry{
		{Message: "fine", Category: "Birthday_Dad"},
		{Message: "bad", Category: "Totally_Bogus"},
	})
	require.ErrorContains(t, err, "entry 1")
	require.ErrorContains(t, err, "Totally_Bogus")

	_, err = Load(context.Background(), db, []Entry{{Message: "   ", Category: "Birthday_Dad"}})
	require.ErrorContains(t, err, "entry 0: message is empty")

	require.Empty(t, db.rows)
}

func TestLoad_StoreError(t *testing.T) {
	boom := errors.New("disk full")
	_, err := Load(context.Background(), &recorder{err: boom}, []Entry{{Message: "x", Category: "Birthday_Mom"}})
	require.ErrorIs(t, err, boom)
}
