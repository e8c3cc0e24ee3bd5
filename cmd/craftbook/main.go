package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/commands"
	"github.com/antti/craftbook/internal/config"
)

var version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

// args splits positional arguments from --key=value and --flag options.
type args struct {
	pos   []string
	flags map[string]string
}

func parseArgs(raw []string) args {
	a := args{flags: map[string]string{}}
	for _, s := range raw {
		if strings.HasPrefix(s, "--") && len(s) > 2 {
			key, value, _ := strings.Cut(s[2:], "=")
			a.flags[key] = value
			continue
		}
		a.pos = append(a.pos, s)
	}
	return a
}

func (a args) has(key string) bool {
	_, ok := a.flags[key]
	return ok
}

func (a args) at(i int) string {
	if i < len(a.pos) {
		return a.pos[i]
	}
	return ""
}

func run(argv []string) int {
	// A missing .env is fine
	_ = godotenv.Load()

	if len(argv) < 1 {
		printUsage()
		return 1
	}

	switch argv[0] {
	case "-h", "--help":
		printHelp()
		return 0
	case "-v", "--version":
		fmt.Printf("craftbook version %s\n", version)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		return handleError(err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		Level(cfg.LogLevel()).
		With().Timestamp().Logger()

	if argv[0] == "--config" {
		if err := cfg.CreateDefaultConfigFile(); err != nil {
			log.Warn().Err(err).Str("path", cfg.ConfigPath).Msg("could not write default config")
		}
		fmt.Print(cfg.FormatConfig())
		return 0
	}

	app, err := commands.Open(cfg, log)
	if err != nil {
		return handleError(err)
	}
	if err := dispatch(app, argv[0], parseArgs(argv[1:])); err != nil {
		return handleError(err)
	}
	return 0
}

func usage(line string) error {
	return &commands.InvalidArgError{Arg: "usage", Reason: "craftbook " + line}
}

func dispatch(app *commands.App, cmd string, a args) error {
	switch cmd {
	case "items", "ls":
		return app.ListItems(a.flags["sort"], strings.Join(a.pos, " "))

	case "item":
		return dispatchItem(app, a)

	case "recipes":
		return app.ListRecipes(a.flags["in"], a.flags["out"], a.flags["duration"])

	case "recipe":
		return dispatchRecipe(app, a)

	case "check":
		return app.Check()

	case "export":
		return app.Export(a.at(0))

	case "import":
		if len(a.pos) < 1 {
			return usage("import <file.json|file.html> [--selector=css] [--base=url]")
		}
		return app.Import(a.pos[0], a.flags["selector"], a.flags["base"])

	case "reset":
		return app.Reset(a.has("yes"))

	default:
		return &commands.InvalidArgError{Arg: cmd, Reason: "unknown command (try 'craftbook --help')"}
	}
}

func dispatchItem(app *commands.App, a args) error {
	sub, name := a.at(0), a.at(1)
	switch sub {
	case "add":
		if name == "" {
			return usage("item add <name> [--icon=url] [--desc=text]")
		}
		return app.AddItem(name, a.flags["icon"], a.flags["desc"])
	case "show":
		if name == "" {
			return usage("item show <name>")
		}
		return app.ShowItem(name)
	case "rename":
		if len(a.pos) < 3 {
			return usage("item rename <name> <new-name>")
		}
		return app.RenameItem(name, a.pos[2])
	case "clone":
		if name == "" {
			return usage("item clone <name>")
		}
		return app.CloneItem(name)
	case "rm":
		if name == "" {
			return usage("item rm <name> [--policy=remove_references|delete_recipes]")
		}
		return app.RemoveItem(name, a.flags["policy"])
	case "set":
		if len(a.pos) < 3 {
			return usage("item set <name> desc|icon|icon-key [value]")
		}
		return app.SetItem(name, a.pos[2], a.at(3))
	default:
		return usage("item add|show|rename|clone|rm|set ...")
	}
}

func dispatchRecipe(app *commands.App, a args) error {
	sub, id := a.at(0), a.at(1)
	switch sub {
	case "add":
		return app.AddRecipe(a.flags["in"], a.flags["out"], a.flags["duration"], a.has("reversible"))
	case "rm":
		if id == "" {
			return usage("recipe rm <id>")
		}
		return app.RemoveRecipe(id)
	case "clone":
		if id == "" {
			return usage("recipe clone <id>")
		}
		return app.CloneRecipe(id)
	case "set":
		if len(a.pos) < 4 {
			return usage("recipe set <id> duration|reversible <value>")
		}
		return app.SetRecipe(id, a.pos[2], a.pos[3])
	case "slot":
		return dispatchSlot(app, a)
	default:
		return usage("recipe add|rm|clone|set|slot ...")
	}
}

// dispatchSlot handles: recipe slot <id> <in|out> add | rm <idx> | set <idx> <item>[:qty]
func dispatchSlot(app *commands.App, a args) error {
	const line = "recipe slot <id> in|out add | rm <idx> | set <idx> <item>[:qty]"
	if len(a.pos) < 4 {
		return usage(line)
	}
	id, side, op := a.pos[1], a.pos[2], a.pos[3]
	switch op {
	case "add":
		return app.AddSlot(id, side)
	case "rm":
		if len(a.pos) < 5 {
			return usage(line)
		}
		return app.RemoveSlot(id, side, a.pos[4])
	case "set":
		if len(a.pos) < 6 {
			return usage(line)
		}
		return app.SetSlot(id, side, a.pos[4], strings.Join(a.pos[5:], " "))
	default:
		return usage(line)
	}
}

func handleError(err error) int {
	fmt.Fprintln(os.Stderr, err)

	// Map errors to exit codes
	var notFound *catalog.NotFoundError
	var slotIndex *catalog.SlotIndexError
	var invalidName *catalog.InvalidNameError
	var invalidURL *catalog.InvalidURLError
	var invalidQty *catalog.InvalidQuantityError
	var invalidDur *catalog.InvalidDurationError
	var invalidArg *commands.InvalidArgError
	var exists *catalog.ItemExistsError
	var format *catalog.FormatError
	var unsupported *catalog.UnsupportedVersionError

	switch {
	case errors.As(err, &notFound):
		return 1
	case errors.Is(err, commands.ErrIncomplete):
		return 2
	case errors.As(err, &slotIndex),
		errors.As(err, &invalidName),
		errors.As(err, &invalidURL),
		errors.As(err, &invalidQty),
		errors.As(err, &invalidDur),
		errors.As(err, &invalidArg):
		return 3
	case errors.As(err, &exists):
		return 4
	case errors.As(err, &format), errors.As(err, &unsupported):
		return 6
	default:
		return 5
	}
}

func printUsage() {
	fmt.Println("Usage: craftbook <command> [arguments]")
	fmt.Println("Try 'craftbook --help' for more information.")
}

func printHelp() {
	help := `craftbook - Catalog of craftable items and recipes

Usage:
  craftbook items [--sort=<order>] [query]      List items
  craftbook item add <name> [--icon=url] [--desc=text]
  craftbook item show <name>                    Show an item and its recipes
  craftbook item rename <name> <new-name>       Rename an item
  craftbook item clone <name>                   Copy an item ("Wood" -> "Wood 2")
  craftbook item rm <name> [--policy=<policy>]  Delete an item
  craftbook item set <name> <field> [value]     Set desc, icon or icon-key
  craftbook recipes [--in=a,b] [--out=c] [--duration=1m]
                                                Rank recipes against a search
  craftbook recipe add [--in=Wood:2,Stone] [--out=Plank] [--duration=30s] [--reversible]
  craftbook recipe rm <id>                      Delete a recipe
  craftbook recipe clone <id>                   Copy a recipe
  craftbook recipe set <id> duration <value>    Set duration (e.g. 1h30m, 90)
  craftbook recipe set <id> reversible yes|no   Set reversibility
  craftbook recipe slot <id> in|out add         Add an empty slot
  craftbook recipe slot <id> in|out rm <idx>    Remove a slot
  craftbook recipe slot <id> in|out set <idx> <item>[:qty]
  craftbook check                               List incomplete recipes
  craftbook export [file.json|file.xlsx]        Export (JSON to stdout by default)
  craftbook import <file.json|file.html> [--selector=css] [--base=url]
  craftbook reset --yes                         Delete the whole catalog
  craftbook --config                            Show current configuration
  craftbook -v                                  Show version
  craftbook -h                                  Show this help

Sort orders (items --sort):
  name      Match rank against the query (default)
  az, za    Alphabetical
  recent    Most recently shown first

Delete policies (item rm --policy):
  remove_references   Clear the item from recipe slots (default)
  delete_recipes      Delete every recipe that uses the item

Environment:
  CRAFTBOOK_DB    Catalog base path (default ~/.config/craftbook/catalog)
  CRAFTBOOK_LOG   Log level: debug, info, warn, error
`
	fmt.Print(help)
}
