// ledgerctl là admin tool thao tác trực tiếp trên users.db:
//
//	ledgerctl show <user_id>
//	ledgerctl set <user_id> <tokens>
//	ledgerctl add <user_id> <delta>
//	ledgerctl list [limit]
//	ledgerctl search <partial_user_id>
//	ledgerctl orders <user_id>
//
// Chạy tool này khi server KHÔNG chạy: cả hai cùng ghi một file SQLite
// thì busy_timeout lo được, nhưng push/pull sync chỉ server làm.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"personabot-backend/internal/config"
	"personabot-backend/internal/domains/ledger"
	ledgerRepo "personabot-backend/internal/domains/ledger/repository"
	ledgerService "personabot-backend/internal/domains/ledger/service"
	"personabot-backend/internal/infrastructure/database"
	"personabot-backend/internal/infrastructure/dbsync"
	"personabot-backend/internal/infrastructure/storage"
	"personabot-backend/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded .env")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("config: %v", err)
	}
	logger.Init(cfg.App.Environment)

	ctx := context.Background()

	// Nếu local file chưa có và bucket được cấu hình thì restore trước
	if _, statErr := os.Stat(cfg.Database.UsersPath); os.IsNotExist(statErr) {
		if endpoint, accessKey, secretKey, bucket, region, useSSL, ok := cfg.SyncCredentials(); ok {
			store, err := storage.NewObjectStore(endpoint, accessKey, secretKey, bucket, region, useSSL)
			if err != nil {
				fatal("sync store: %v", err)
			}
			if err := dbsync.PullAll(ctx, store, []string{cfg.Database.UsersPath}); err != nil {
				fatal("pull: %v", err)
			}
		}
	}

	db, err := database.Open(cfg.Database.UsersPath)
	if err != nil {
		fatal("open database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureUsersSchema(db); err != nil {
		fatal("schema: %v", err)
	}

	svc := ledgerService.NewLedgerService(ledgerRepo.NewLedgerRepository(db))

	switch os.Args[1] {
	case "show":
		cmdShow(ctx, svc, os.Args[2:])
	case "set":
		cmdSet(ctx, svc, os.Args[2:])
	case "add":
		cmdAdd(ctx, svc, os.Args[2:])
	case "list":
		cmdList(ctx, svc, os.Args[2:])
	case "search":
		cmdSearch(ctx, svc, os.Args[2:])
	case "orders":
		cmdOrders(ctx, svc, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func cmdShow(ctx context.Context, svc ledger.LedgerService, args []string) {
	userID := parseUserID(args, 0)
	tokens, err := svc.Show(ctx, userID)
	if err != nil {
		fatal("show: %v", err)
	}
	fmt.Printf("user %d: %d tokens\n", userID, tokens)
}

func cmdSet(ctx context.Context, svc ledger.LedgerService, args []string) {
	userID := parseUserID(args, 0)
	if len(args) < 2 {
		fatal("set: tokens argument is required")
	}
	tokens, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fatal("set: invalid tokens %q", args[1])
	}

	next, err := svc.Set(ctx, userID, tokens)
	if err != nil {
		fatal("set: %v", err)
	}
	fmt.Printf("user %d: %d tokens\n", userID, next)
}

func cmdAdd(ctx context.Context, svc ledger.LedgerService, args []string) {
	userID := parseUserID(args, 0)
	if len(args) < 2 {
		fatal("add: delta argument is required")
	}
	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fatal("add: invalid delta %q", args[1])
	}

	next, err := svc.Add(ctx, userID, delta)
	if err != nil {
		fatal("add: %v", err)
	}
	fmt.Printf("user %d: %d tokens (%+d)\n", userID, next, delta)
}

func cmdList(ctx context.Context, svc ledger.LedgerService, args []string) {
	limit := 20
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			fatal("list: invalid limit %q", args[0])
		}
		limit = parsed
	}

	resp, err := svc.List(ctx, limit, 0)
	if err != nil {
		fatal("list: %v", err)
	}
	printBalances(resp)
}

func cmdSearch(ctx context.Context, svc ledger.LedgerService, args []string) {
	if len(args) < 1 {
		fatal("search: partial user id is required")
	}
	resp, err := svc.Search(ctx, args[0])
	if err != nil {
		fatal("search: %v", err)
	}
	printBalances(resp)
}

func cmdOrders(ctx context.Context, svc ledger.LedgerService, args []string) {
	userID := parseUserID(args, 0)
	resp, err := svc.ListOrdersByUser(ctx, userID)
	if err != nil {
		fatal("orders: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER ID\tTOKENS\tAMOUNT\tCURRENCY\tSTATUS\tCREATED")
	for _, o := range resp.Orders {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			o.ID, o.Tokens, o.Amount.String(), o.Currency, o.Status,
			o.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
	fmt.Printf("%d orders\n", resp.Total)
}

func printBalances(resp *ledger.BalanceListResp) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER ID\tTOKENS\tUPDATED")
	for _, b := range resp.Balances {
		fmt.Fprintf(w, "%d\t%d\t%s\n", b.UserID, b.Tokens, b.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
	fmt.Printf("%d users\n", resp.Total)
}

func parseUserID(args []string, idx int) int64 {
	if len(args) <= idx {
		fatal("user id argument is required")
	}
	userID, err := strconv.ParseInt(args[idx], 10, 64)
	if err != nil || userID <= 0 {
		fatal("invalid user id %q", args[idx])
	}
	return userID
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ledgerctl <command> [args]

commands:
  show <user_id>            print token balance
  set <user_id> <tokens>    overwrite balance (negative clamps to 0)
  add <user_id> <delta>     adjust balance (floors at 0)
  list [limit]              recently updated balances
  search <partial_id>       balances whose user id contains the digits
  orders <user_id>          purchase history`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
