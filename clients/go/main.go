// greetings CLI - command line client for the greeting API
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Jomoregie1/greetingapi/clients/go/greetingapi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	client := greetingapi.NewClient(os.Getenv("GREETINGS_URL"))
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "types":
		resp, err := client.Categories()
		exitOnError(err)
		for _, c := range resp.Categories {
			fmt.Println(" ", c)
		}

	case "list":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: greetings list <category> [limit] [offset]")
			os.Exit(1)
		}
		resp, err := client.List(os.Args[2], intArg(3), intArg(4))
		exitOnError(err)
		printPage(resp)

	case "random":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: greetings random <category>")
			os.Exit(1)
		}
		resp, err := client.Random(os.Args[2])
		exitOnError(err)
		fmt.Println(resp.Message)

	case "search":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: greetings search <query> [category]")
			os.Exit(1)
		}
		category := ""
		if len(os.Args) > 3 {
			category = os.Args[3]
		}
		resp, err := client.Search(os.Args[2], category, 0, 0)
		exitOnError(err)
		printPage(resp)

	case "recent":
		category := ""
		if len(os.Args) > 2 {
			category = os.Args[2]
		}
		resp, err := client.Recent(category, 0, 0)
		exitOnError(err)
		printPage(resp)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`greetings - greeting card text from the command line

Usage: greetings <command> [options]

Commands:
  types                              List categories with greetings
  list <category> [limit] [offset]   List greetings in a category
  random <category>                  Print one random greeting
  search <query> [category]          Full-text search
  recent [category]                  Greetings added this month
  health                             Check server health

Environment:
  GREETINGS_URL   Server URL (default: http://localhost:8080)`)
}

func intArg(i int) int {
	if len(os.Args) <= i {
		return 0
	}
	n, err := strconv.Atoi(os.Args[i])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid number: %s\n", os.Args[i])
		os.Exit(1)
	}
	return n
}

func printPage(p *greetingapi.Page) {
	fmt.Printf("page %d of %d (%d greetings)\n", p.CurrentPage, p.TotalPages, p.TotalCount)
	for _, it := range p.Items {
		fmt.Printf("  [%s] %s\n", it.Category, it.Message)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
