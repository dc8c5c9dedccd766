package main

// #region imports
import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kdwyer/docqa/internal/replay"
)

// #endregion

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to a fixture JSON file")
	dirPath := flag.String("dir", "", "run every *.json fixture in a directory")
	jsonOut := flag.Bool("json", false, "output results as JSON")
	flag.Parse()

	if (*fixturePath == "" && *dirPath == "") || (*fixturePath != "" && *dirPath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --dir path/to/fixtures/")
		os.Exit(2)
	}

	var paths []string
	if *fixturePath != "" {
		paths = []string{*fixturePath}
	} else {
		matches, err := filepath.Glob(filepath.Join(*dirPath, "*.json"))
		if err != nil || len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "no fixtures found in %s\n", *dirPath)
			os.Exit(2)
		}
		paths = matches
	}

	failed := 0
	for _, path := range paths {
		if !runOne(path, *jsonOut) {
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// #endregion main

// #region run

func runOne(path string, jsonOut bool) bool {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}

	results := replay.Replay(context.Background(), f)
	summary := replay.Summarize(f.Description, results)

	if jsonOut {
		out := struct {
			Summary replay.Summary      `json:"summary"`
			Turns   []replay.TurnResult `json:"turns"`
		}{summary, results}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(out)
	} else {
		fmt.Printf("%s: %s\n", path, f.Description)
		for i, r := range results {
			status := "ok"
			if !r.Passed {
				status = "FAIL"
			}
			fmt.Printf("  turn %d [%s] %s\n", i+1, status, r.Question)
			for _, m := range r.Mismatches {
				fmt.Printf("    %s\n", m)
			}
		}
		fmt.Printf("  %d/%d passed\n", summary.Passed, summary.TotalTurns)
	}
	return summary.Failed == 0
}

// #endregion run
