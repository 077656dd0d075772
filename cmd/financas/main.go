// financas is a small terminal client for the household budget: it runs
// the same engine the UI embeds, against a local SQLite cache and an
// optional sync server.
//
// Environment: SYNC_URL and FAMILY_ID point at a sync server (leave
// empty for offline-only), LOCAL_DB_PATH overrides the cache location,
// GEMINI_API_KEY enables the "ask" command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abrito/financas/financas-sync/pkg/advisor"
	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/abrito/financas/financas-sync/pkg/generator"
	"github.com/abrito/financas/financas-sync/pkg/remote"
	"github.com/abrito/financas/financas-sync/pkg/stats"
	"github.com/abrito/financas/financas-sync/pkg/store/sqlite"
	syncengine "github.com/abrito/financas/financas-sync/pkg/sync"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	now := time.Now()
	year := flag.Int("year", now.Year(), "year to open")
	month := flag.Int("month", int(now.Month()), "month to open (1-12)")
	flag.Parse()

	if err := run(*year, *month, flag.Args()); err != nil {
		log.Fatal().Err(err).Msg("financas failed")
	}
}

func run(year, month int, args []string) error {
	dbPath := os.Getenv("LOCAL_DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dbPath = filepath.Join(home, ".financas", "months.db")
	}

	local, err := sqlite.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}

	var conn syncengine.RemoteConnection
	if url := os.Getenv("SYNC_URL"); url != "" {
		conn = remote.NewClient(remote.Config{
			BaseURL:  url,
			FamilyID: os.Getenv("FAMILY_ID"),
		})
	}

	engine := syncengine.New(local, conn, generator.NewDefault())
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := engine.Start(ctx); err != nil {
		if errors.Is(err, domain.ErrAuthDisabled) {
			fmt.Println("(servidor sem login anônimo: modo offline)")
		} else if conn != nil {
			fmt.Println("(servidor inacessível: modo offline)")
		}
	}

	data, err := engine.LoadMonth(ctx, year, month)
	if err != nil {
		return err
	}

	command := "show"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "show":
		printMonth(engine, data, year, month)
		return nil
	case "toggle":
		if len(args) != 3 {
			return fmt.Errorf("usage: financas toggle <incomes|expenses|shoppingItems|avulsosItems> <id>")
		}
		if err := engine.TogglePaid(ctx, domain.ListKey(args[1]), args[2]); err != nil {
			return err
		}
		// give the background push a moment before exiting
		waitSettled(engine)
		printMonth(engine, engine.Current(), year, month)
		return nil
	case "ask":
		if len(args) != 2 {
			return fmt.Errorf("usage: financas ask <question>")
		}
		return ask(ctx, args[1], data, year)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func printMonth(engine *syncengine.Engine, data *domain.MonthData, year, month int) {
	summary := stats.Compute(data)

	fmt.Printf("== %s  [%s]\n\n", domain.MonthKey(year, month), engine.Status())
	fmt.Printf("Salário:        %10s (pago %s)\n", summary.Salary.Total.StringFixed(2), summary.Salary.Paid.StringFixed(2))
	fmt.Printf("Mumbuca líq.:   %10s\n", summary.MumbucaNet.Total.StringFixed(2))
	fmt.Printf("Despesas reais: %10s (pago %s)\n", summary.RealExpenses.Total.StringFixed(2), summary.RealExpenses.Paid.StringFixed(2))
	fmt.Printf("Sobra:          %10s\n\n", summary.SurplusRaw.StringFixed(2))

	for _, group := range stats.GroupDebts(data, stats.DefaultDebtTargets) {
		fmt.Printf("Dívida %-14s %10s (pago %s)\n", group.Name, group.Total.StringFixed(2), group.PaidAmount.StringFixed(2))
	}

	fmt.Println("\nDespesas:")
	for _, tx := range data.Expenses {
		mark := " "
		if tx.Paid {
			mark = "x"
		}
		fmt.Printf("  [%s] %-30s %10s  %s\n", mark, tx.Description, tx.Amount.StringFixed(2), tx.ID)
	}
}

func ask(ctx context.Context, question string, data *domain.MonthData, year int) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for ask")
	}

	adv, err := advisor.New(ctx, apiKey)
	if err != nil {
		return err
	}

	answer, err := adv.Ask(ctx, question, data, []stats.Projection{stats.Project(data, year)})
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

// waitSettled blocks briefly until the engine leaves the syncing state.
func waitSettled(engine *syncengine.Engine) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if engine.Status() != syncengine.StatusSyncing {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}
