package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kdwyer/docqa/internal/docstore"
	"github.com/kdwyer/docqa/internal/provenance"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", "", "path to docqa.db")
	last := flag.Int("last", 20, "show N most recent turns")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/docqa.db [--last N] [--json]")
		os.Exit(2)
	}

	db, err := docstore.OpenDB(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	turnLog, err := provenance.NewLog(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open turn log: %v\n", err)
		os.Exit(1)
	}

	entries, err := turnLog.Recent(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read turns: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no turns recorded")
		return
	}

	if *jsonOut {
		printJSON(entries)
	} else {
		printText(entries)
	}
}

// #endregion main

// #region output

type turnRow struct {
	TurnID          string   `json:"turn_id"`
	Domain          string   `json:"domain"`
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	Sources         []string `json:"sources,omitempty"`
	CalculationNote string   `json:"calculation_note,omitempty"`
	ExecutionPath   []string `json:"execution_path"`
	Flags           []string `json:"flags,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

func toRow(e provenance.TurnEntry) turnRow {
	return turnRow{
		TurnID:          e.TurnID,
		Domain:          e.Domain,
		Question:        e.Question,
		Answer:          e.Answer,
		Sources:         e.Sources,
		CalculationNote: e.CalculationNote,
		ExecutionPath:   e.ExecutionPath,
		Flags:           e.Flags,
		CreatedAt:       e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func printJSON(entries []provenance.TurnEntry) {
	rows := make([]turnRow, len(entries))
	for i, e := range entries {
		rows[i] = toRow(e)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(rows)
}

func printText(entries []provenance.TurnEntry) {
	for _, e := range entries {
		r := toRow(e)
		fmt.Printf("%s  [%s]  domain=%s\n", r.CreatedAt, shortID(r.TurnID), r.Domain)
		fmt.Printf("  Q: %s\n", r.Question)
		fmt.Printf("  A: %s\n", truncate(r.Answer, 200))
		if len(r.Sources) > 0 {
			fmt.Printf("  sources: %s\n", strings.Join(r.Sources, ", "))
		}
		if r.CalculationNote != "" {
			fmt.Printf("  calculation: %s\n", r.CalculationNote)
		}
		fmt.Printf("  path: %s\n", strings.Join(r.ExecutionPath, " -> "))
		if len(r.Flags) > 0 {
			fmt.Printf("  flags: %s\n", strings.Join(r.Flags, " "))
		}
		fmt.Println()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// #endregion output
