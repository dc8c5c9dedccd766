package main

// #region imports
import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kdwyer/docqa/internal/docstore"
	"github.com/kdwyer/docqa/internal/ingest"
	"github.com/kdwyer/docqa/internal/oracle"
	"github.com/kdwyer/docqa/internal/provenance"
	"github.com/kdwyer/docqa/internal/websearch"
	"github.com/kdwyer/docqa/internal/workflow"
)

// #endregion

// #region main

const turnTimeout = 120 * time.Second

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	dbPath := envOr("QA_DB", "docqa.db")

	db, err := docstore.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	client := oracle.NewClient(oracle.DefaultConfig())

	store, err := docstore.NewStore(db, client, docstore.DefaultConfig())
	if err != nil {
		log.Fatalf("failed to init document store: %v", err)
	}

	turnLog, err := provenance.NewLog(db)
	if err != nil {
		log.Fatalf("failed to init turn log: %v", err)
	}

	web := websearch.NewClient(websearch.DefaultConfig())

	orch := workflow.NewOrchestrator(client, workflow.NewWebClient(web), workflow.DefaultConfig())
	orch.SetRecorder(turnLog)

	ingestor := ingest.NewIngestor(client, store, ingest.DefaultSplitConfig())

	// Attach the retriever up front if previous sessions left chunks
	// in the store.
	if n, err := store.Count(context.Background()); err == nil && n > 0 {
		orch.SetRetriever(workflow.NewStoreRetriever(store))
		fmt.Printf("Document store holds %d chunks from earlier sessions.\n", n)
	}

	fmt.Println("Document QA chatbot ready.")
	fmt.Printf("  DB: %s | Oracle: %s\n", dbPath, oracle.DefaultConfig().BaseURL)
	fmt.Println("Commands: /domain <name>, /ingest <file|url>, /web <query>, /history, quit")

	repl(orch, store, ingestor, web)
}

// #endregion main

// #region repl

func repl(orch *workflow.Orchestrator, store *docstore.Store, ingestor *ingest.Ingestor, web *websearch.Client) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		switch {
		case strings.HasPrefix(line, "/domain "):
			domain := strings.TrimSpace(strings.TrimPrefix(line, "/domain "))
			orch.SetDomain(domain)
			fmt.Printf("Domain set to %q.\n", domain)

		case strings.HasPrefix(line, "/ingest "):
			source := strings.TrimSpace(strings.TrimPrefix(line, "/ingest "))
			runIngest(orch, store, ingestor, source)

		case strings.HasPrefix(line, "/web "):
			query := strings.TrimSpace(strings.TrimPrefix(line, "/web "))
			runWebPreview(web, query)

		case line == "/history":
			if h := orch.Memory().Render(); h != "" {
				fmt.Println(h)
			} else {
				fmt.Println("No turns yet.")
			}

		default:
			runTurn(orch, line)
		}
	}
}

func runTurn(orch *workflow.Orchestrator, question string) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	res := orch.Invoke(ctx, question)

	fmt.Printf("\n%s\n", res.Answer.Text)
	if len(res.Answer.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(res.Answer.Sources, ", "))
	}
	if res.Answer.CalculationNote != "" {
		fmt.Printf("Calculation: %s\n", res.Answer.CalculationNote)
	}
	fmt.Printf("\n[path] %s\n", strings.Join(res.ExecutionPath, " -> "))
}

// runWebPreview shows what the web fallback tier would fetch for a
// query, before any grading.
func runWebPreview(web *websearch.Client, query string) {
	if query == "" {
		fmt.Println("Usage: /web <query>")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	results, err := web.Search(ctx, query)
	if err != nil {
		log.Printf("web search error: %v", err)
		return
	}
	if out := websearch.FormatAsEvidence(results); out != "" {
		fmt.Println(out)
	} else {
		fmt.Println("No results.")
	}
}

func runIngest(orch *workflow.Orchestrator, store *docstore.Store, ingestor *ingest.Ingestor, source string) {
	if orch.Domain() == "" {
		fmt.Println("Set a domain first with /domain.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	res, err := ingestor.Ingest(ctx, orch.Domain(), source)
	if err != nil {
		log.Printf("ingest error: %v", err)
		return
	}
	if !res.Accepted {
		fmt.Printf("Rejected: %s\n", res.Reason)
		return
	}
	fmt.Printf("Ingested %s: %d chunks (domain %q).\n", res.Source, res.Chunks, res.Domain)

	orch.SetRetriever(workflow.NewStoreRetriever(store))
}

// #endregion repl

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
