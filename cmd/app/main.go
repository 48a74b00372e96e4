package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	sqliteadapter "github.com/nthomsencph/wikiworlds/internal/adapters/db/sqlite"
	httpadapter "github.com/nthomsencph/wikiworlds/internal/adapters/http"
	"github.com/nthomsencph/wikiworlds/internal/application"
	"github.com/nthomsencph/wikiworlds/internal/domain"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "wikiworlds",
		Usage: "Worldbuilding content platform server and CLI",
		Commands: []*cli.Command{
			serverCommand(),
			authCommand(),
			weavesCommand(),
			worldsCommand(),
			entryTypesCommand(),
			entriesCommand(),
			valuesCommand(),
			blocksCommand(),
			referencesCommand(),
			activityCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, ":8080", "wikiworlds.db", "admin@wikiworlds.local", "changeme1")
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Run HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "db-path", Value: "wikiworlds.db", Usage: "SQLite database path"},
			&cli.StringFlag{Name: "bootstrap-admin-email", Value: "admin@wikiworlds.local", Usage: "initial admin email"},
			&cli.StringFlag{Name: "bootstrap-admin-password", Value: "changeme1", Usage: "initial admin password when users are empty"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("addr"), c.String("db-path"), c.String("bootstrap-admin-email"), c.String("bootstrap-admin-password"))
		},
	}
}

func runServer(ctx context.Context, addr, dbPath, bootstrapEmail, bootstrapPassword string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	db, err := sqliteadapter.Open(dbPath)
	if err != nil {
		return err
	}
	if err := sqliteadapter.RunMigrations(ctx, db); err != nil {
		return err
	}

	repo := sqliteadapter.NewRepository(db)
	auth := application.NewAuthService(repo)
	tenancy := application.NewTenancyService(repo, auth)
	catalog := application.NewCatalogService(repo, tenancy, auth)
	content := application.NewContentService(repo, repo, tenancy, auth)

	if err := bootstrapAdmin(ctx, repo, auth, bootstrapEmail, bootstrapPassword, logger); err != nil {
		return err
	}

	router := httpadapter.NewRouter(auth, tenancy, catalog, content, logger)
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// bootstrapAdmin registers the initial account on an empty database so
// the instance is usable straight after first start.
func bootstrapAdmin(ctx context.Context, repo *sqliteadapter.Repository, auth *application.AuthService, email, password string, logger zerolog.Logger) error {
	n, err := repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	u, err := auth.Register(ctx, email, password)
	if err != nil {
		return err
	}
	logger.Info().Str("email", u.Email).Msg("bootstrapped admin user")
	return nil
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authentication commands",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "server", Value: "http://127.0.0.1:8080"},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := cliConfig{Server: c.String("server")}
					var out struct {
						ID    string `json:"id"`
						Email string `json:"email"`
					}
					if err := doRegister(ctx, cfg, c.String("email"), c.String("password"), &out); err != nil {
						return err
					}
					fmt.Printf("registered %s\n", out.Email)
					return nil
				},
			},
			{
				Name:  "login",
				Usage: "Login and store CLI token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "server", Value: "http://127.0.0.1:8080"},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "token-name", Value: "cli"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := cliConfig{Server: c.String("server")}
					var out struct {
						Token string `json:"token"`
						Email string `json:"email"`
					}
					if err := doLogin(ctx, cfg, c.String("email"), c.String("password"), c.String("token-name"), &out); err != nil {
						return err
					}
					cfg.Token = out.Token
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Printf("logged in as %s\n", out.Email)
					return nil
				},
			},
			{
				Name:  "whoami",
				Usage: "Show current authenticated user",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						ID    string `json:"id"`
						Email string `json:"email"`
					}
					if err := doWhoAmI(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printKV([][2]string{{"id", out.ID}, {"email", out.Email}})
					return nil
				},
			},
			{
				Name:  "logout",
				Usage: "Clear local CLI auth token",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					_ = doLogout(ctx, cfg)
					cfg.Token = ""
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Println("logged out")
					return nil
				},
			},
		},
	}
}

func weavesCommand() *cli.Command {
	return &cli.Command{
		Name:  "weaves",
		Usage: "Weave (tenant) commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List weaves you belong to",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Weave
					if err := doWeavesList(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printWeaves(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a weave",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "slug"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Weave
					if err := doWeavesCreate(ctx, cfg, c.String("name"), c.String("slug"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printWeaves([]domain.Weave{out})
					return nil
				},
			},
			{
				Name:  "invite",
				Usage: "Invite a user to a weave",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "weave-id", Required: true},
					&cli.StringFlag{Name: "user-id", Required: true},
					&cli.StringFlag{Name: "role", Value: "member"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out map[string]any
					if err := doWeaveInvite(ctx, cfg, c.String("weave-id"), c.String("user-id"), c.String("role"), &out); err != nil {
						return err
					}
					fmt.Printf("invited user %s as %s\n", c.String("user-id"), c.String("role"))
					return nil
				},
			},
		},
	}
}

func worldsCommand() *cli.Command {
	return &cli.Command{
		Name:  "worlds",
		Usage: "World commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List worlds",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "weave-id"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.World
					if err := doWorldsList(ctx, cfg, c.String("weave-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printWorlds(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a world in a weave",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "weave-id", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "slug"},
					&cli.StringFlag{Name: "description"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.World
					if err := doWorldsCreate(ctx, cfg, c.String("weave-id"), c.String("name"), c.String("slug"), c.String("description"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printWorlds([]domain.World{out})
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a world",
				Flags: []cli.Flag{&cli.StringFlag{Name: "world-id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doWorldsDelete(ctx, cfg, c.String("world-id")); err != nil {
						return err
					}
					fmt.Println("world deleted")
					return nil
				},
			},
			{
				Name:  "members",
				Usage: "Manage world members",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List world members",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "world-id", Required: true},
							&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out []domain.WorldUser
							if err := doWorldMembersList(ctx, cfg, c.String("world-id"), &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printWorldMembers(out)
							return nil
						},
					},
					{
						Name:  "add",
						Usage: "Add a member to a world",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "world-id", Required: true},
							&cli.StringFlag{Name: "user-id", Required: true},
							&cli.StringFlag{Name: "role", Value: "viewer"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out map[string]any
							if err := doWorldMembersAdd(ctx, cfg, c.String("world-id"), c.String("user-id"), c.String("role"), &out); err != nil {
								return err
							}
							fmt.Printf("added user %s as %s\n", c.String("user-id"), c.String("role"))
							return nil
						},
					},
				},
			},
		},
	}
}

func entryTypesCommand() *cli.Command {
	return &cli.Command{
		Name:  "entry-types",
		Usage: "Entry type and field schema commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List entry types in a world",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "world-id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.EntryType
					if err := doEntryTypesList(ctx, cfg, c.String("world-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printEntryTypes(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create an entry type",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "world-id", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "slug"},
					&cli.StringFlag{Name: "parent-id"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.EntryType
					if err := doEntryTypesCreate(ctx, cfg, c.String("world-id"), c.String("name"), c.String("slug"), c.String("parent-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printEntryTypes([]domain.EntryType{out})
					return nil
				},
			},
			{
				Name:  "fields",
				Usage: "Manage field definitions",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List field definitions of an entry type",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "entry-type-id", Required: true},
							&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out []domain.FieldDefinition
							if err := doFieldsList(ctx, cfg, c.String("entry-type-id"), &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printFieldDefinitions(out)
							return nil
						},
					},
					{
						Name:  "create",
						Usage: "Create a field definition",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "entry-type-id", Required: true},
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "type", Value: "text"},
							&cli.BoolFlag{Name: "temporal", Usage: "values carry timeline intervals"},
							&cli.BoolFlag{Name: "required"},
							&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out domain.FieldDefinition
							if err := doFieldsCreate(ctx, cfg, c.String("entry-type-id"), c.String("name"), c.String("type"), c.Bool("temporal"), c.Bool("required"), &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printFieldDefinitions([]domain.FieldDefinition{out})
							return nil
						},
					},
				},
			},
		},
	}
}

func entriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "entries",
		Usage: "Entry tree commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List entries in a world",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "world-id", Required: true},
					&cli.StringFlag{Name: "entry-type-id"},
					&cli.IntFlag{Name: "year", Usage: "filter by fictional-timeline year"},
					&cli.IntFlag{Name: "limit", Value: 100},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var year *int
					if c.IsSet("year") {
						v := int(c.Int("year"))
						year = &v
					}
					var out []domain.Entry
					if err := doEntriesList(ctx, cfg, c.String("world-id"), c.String("entry-type-id"), year, int(c.Int("limit")), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printEntries(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create an entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "world-id", Required: true},
					&cli.StringFlag{Name: "entry-type-id", Required: true},
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "slug"},
					&cli.StringFlag{Name: "parent-id"},
					&cli.IntFlag{Name: "start-year"},
					&cli.IntFlag{Name: "end-year"},
					&cli.BoolFlag{Name: "circa"},
					&cli.BoolFlag{Name: "ongoing"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					payload := map[string]any{
						"entry_type_id": c.String("entry-type-id"),
						"title":         c.String("title"),
						"slug":          c.String("slug"),
						"timeline":      timelinePayload(c),
					}
					if c.String("parent-id") != "" {
						payload["parent_id"] = c.String("parent-id")
					}
					var out domain.Entry
					if err := doEntriesCreate(ctx, cfg, c.String("world-id"), payload, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printEntries([]domain.Entry{out})
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Show one entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Entry
					if err := doEntriesGet(ctx, cfg, c.String("entry-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printKV([][2]string{
						{"id", out.ID.String()},
						{"title", out.Title},
						{"slug", out.Slug},
						{"path", out.Path},
						{"timeline", formatDisplay(out.TimelineDisplay)},
					})
					return nil
				},
			},
			{
				Name:  "move",
				Usage: "Move an entry (and its subtree) under a new parent",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.StringFlag{Name: "parent-id", Usage: "new parent; omit to move to root"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Entry
					if err := doEntriesMove(ctx, cfg, c.String("entry-id"), c.String("parent-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printEntries([]domain.Entry{out})
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete an entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.BoolFlag{Name: "recursive", Usage: "also delete descendants"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doEntriesDelete(ctx, cfg, c.String("entry-id"), c.Bool("recursive")); err != nil {
						return err
					}
					fmt.Println("entry deleted")
					return nil
				},
			},
			{
				Name:  "children",
				Usage: "List children of an entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.BoolFlag{Name: "recursive", Usage: "whole subtree"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Entry
					if err := doEntriesChildren(ctx, cfg, c.String("entry-id"), c.Bool("recursive"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printEntries(out)
					return nil
				},
			},
			{
				Name:  "ancestors",
				Usage: "List ancestors of an entry, root first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Entry
					if err := doEntriesAncestors(ctx, cfg, c.String("entry-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printEntries(out)
					return nil
				},
			},
			{
				Name:  "counts",
				Usage: "Character counts for entries",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "world-id", Required: true},
					&cli.StringSliceFlag{Name: "entry-id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out map[uuid.UUID]int
					if err := doCharacterCounts(ctx, cfg, c.String("world-id"), c.StringSlice("entry-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printCharacterCounts(out)
					return nil
				},
			},
		},
	}
}

func valuesCommand() *cli.Command {
	return &cli.Command{
		Name:  "values",
		Usage: "Field value commands",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Set a field value, optionally time-boxed",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.StringFlag{Name: "field-id", Required: true},
					&cli.StringFlag{Name: "value", Required: true, Usage: "JSON object payload"},
					&cli.IntFlag{Name: "start-year"},
					&cli.IntFlag{Name: "end-year"},
					&cli.BoolFlag{Name: "circa"},
					&cli.BoolFlag{Name: "ongoing"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var value map[string]any
					if err := json.Unmarshal([]byte(c.String("value")), &value); err != nil {
						return fmt.Errorf("value must be a JSON object: %w", err)
					}
					payload := map[string]any{
						"field_definition_id": c.String("field-id"),
						"value":               value,
						"timeline":            timelinePayload(c),
					}
					var out domain.FieldValue
					if err := doValuesSet(ctx, cfg, c.String("entry-id"), payload, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printFieldValues([]domain.FieldValue{out})
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List current field values, optionally as of a year",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.IntFlag{Name: "year"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var year *int
					if c.IsSet("year") {
						v := int(c.Int("year"))
						year = &v
					}
					var out []domain.FieldValue
					if err := doValuesList(ctx, cfg, c.String("entry-id"), year, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printFieldValues(out)
					return nil
				},
			},
			{
				Name:  "history",
				Usage: "Full timeline history of one field",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.StringFlag{Name: "field-id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.FieldValue
					if err := doValuesHistory(ctx, cfg, c.String("entry-id"), c.String("field-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printFieldValues(out)
					return nil
				},
			},
			{
				Name:  "overlaps",
				Usage: "Report overlapping intervals in one field's history",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.StringFlag{Name: "field-id", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []map[string]any
					if err := doValuesOverlaps(ctx, cfg, c.String("entry-id"), c.String("field-id"), &out); err != nil {
						return err
					}
					return printJSON(out)
				},
			},
		},
	}
}

func blocksCommand() *cli.Command {
	return &cli.Command{
		Name:  "blocks",
		Usage: "Block commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List blocks of an entry, optionally as of a year",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.IntFlag{Name: "year"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var year *int
					if c.IsSet("year") {
						v := int(c.Int("year"))
						year = &v
					}
					var out []domain.Block
					if err := doBlocksList(ctx, cfg, c.String("entry-id"), year, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printBlocks(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a block",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.StringFlag{Name: "type", Value: "paragraph"},
					&cli.StringFlag{Name: "content", Required: true, Usage: "JSON object payload"},
					&cli.IntFlag{Name: "start-year"},
					&cli.IntFlag{Name: "end-year"},
					&cli.BoolFlag{Name: "circa"},
					&cli.BoolFlag{Name: "ongoing"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var content map[string]any
					if err := json.Unmarshal([]byte(c.String("content")), &content); err != nil {
						return fmt.Errorf("content must be a JSON object: %w", err)
					}
					payload := map[string]any{
						"block_type": c.String("type"),
						"content":    content,
						"timeline":   timelinePayload(c),
					}
					var out domain.Block
					if err := doBlocksCreate(ctx, cfg, c.String("entry-id"), payload, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printBlocks([]domain.Block{out})
					return nil
				},
			},
		},
	}
}

func referencesCommand() *cli.Command {
	return &cli.Command{
		Name:  "refs",
		Usage: "Typed reference commands",
		Commands: []*cli.Command{
			{
				Name:  "types",
				Usage: "Manage reference types",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List reference types in a world",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "world-id", Required: true},
							&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out []domain.ReferenceType
							if err := doReferenceTypesList(ctx, cfg, c.String("world-id"), &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printReferenceTypes(out)
							return nil
						},
					},
					{
						Name:  "create",
						Usage: "Create a reference type",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "world-id", Required: true},
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "inverse-name"},
							&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out domain.ReferenceType
							if err := doReferenceTypesCreate(ctx, cfg, c.String("world-id"), c.String("name"), c.String("inverse-name"), &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printReferenceTypes([]domain.ReferenceType{out})
							return nil
						},
					},
				},
			},
			{
				Name:  "list",
				Usage: "List references of an entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-id", Required: true},
					&cli.BoolFlag{Name: "incoming", Usage: "references pointing at the entry"},
					&cli.IntFlag{Name: "year"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var year *int
					if c.IsSet("year") {
						v := int(c.Int("year"))
						year = &v
					}
					var out []domain.Reference
					if err := doReferencesList(ctx, cfg, c.String("entry-id"), c.Bool("incoming"), year, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printReferences(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a reference between two entries",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Required: true, Usage: "source entry id"},
					&cli.StringFlag{Name: "to", Required: true, Usage: "target entry id"},
					&cli.StringFlag{Name: "type-id", Required: true},
					&cli.IntFlag{Name: "start-year"},
					&cli.IntFlag{Name: "end-year"},
					&cli.BoolFlag{Name: "circa"},
					&cli.BoolFlag{Name: "ongoing"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					payload := map[string]any{
						"reference_type_id": c.String("type-id"),
						"target_entry_id":   c.String("to"),
						"timeline":          timelinePayload(c),
					}
					var out domain.Reference
					if err := doReferencesCreate(ctx, cfg, c.String("from"), payload, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printReferences([]domain.Reference{out})
					return nil
				},
			},
		},
	}
}

func activityCommand() *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "Activity log commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent activity",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 50},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.ActivityLog
					if err := doActivityList(ctx, cfg, int(c.Int("limit")), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printActivityLogs(out)
					return nil
				},
			},
		},
	}
}

// timelinePayload reads the shared --start-year/--end-year/--circa/
// --ongoing flags into an interval payload.
func timelinePayload(c *cli.Command) map[string]any {
	payload := map[string]any{}
	if c.IsSet("start-year") {
		payload["start_year"] = c.Int("start-year")
	}
	if c.IsSet("end-year") {
		payload["end_year"] = c.Int("end-year")
	}
	if c.Bool("circa") {
		payload["is_circa"] = true
	}
	if c.Bool("ongoing") {
		payload["is_ongoing"] = true
	}
	return payload
}

func jsonMarshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
