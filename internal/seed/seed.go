// Package seed loads greeting fixtures into a store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Jomoregie1/greetingapi/internal/greetings"
	"github.com/Jomoregie1/greetingapi/internal/models"
)

// Entry is one greeting in a seed file.
type Entry struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Inserter is the write side of the greetings store.
type Inserter interface {
	InsertGreeting(ctx context.Context, g *models.Greeting) (bool, error)
}

// Result summarizes a load.
type Result struct {
	Inserted int
	Skipped  int // duplicates by message hash
}

// Decode reads a JSON array of entries.
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return entries, nil
}

// Load validates every entry before writing any, then inserts them in order.
func Load(ctx context.Context, db Inserter, entries []Entry) (Result, error) {
	rows := make([]models.Greeting, 0, len(entries))
	for i, e := range entries {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			return Result{}, fmt.Errorf("entry %d: message is empty", i)
		}
		c, err := greetings.Resolve(e.Category)
		if err != nil {
			return Result{}, fmt.Errorf("entry %d: %s", i, greetings.DetailOf(err))
		}
		value := c.Value
		rows = append(rows, models.Greeting{Message: msg, Type: &value})
	}

	var res Result
	for i := range rows {
		ok, err := db.InsertGreeting(ctx, &rows[i])
		if err != nil {
			return res, fmt.Errorf("entry %d: %w", i, err)
		}
		if ok {
			res.Inserted++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}
