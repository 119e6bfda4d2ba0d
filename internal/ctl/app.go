// Package ctl implements flashctl, the operator CLI for seeding default
// decks and repairing deck/card links.
package ctl

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/flagx"
	"github.com/dmitrijs2005/flashdeck/internal/netx"
	"github.com/dmitrijs2005/flashdeck/internal/server/config"
	"github.com/dmitrijs2005/flashdeck/internal/server/services"
)

const usage = `usage: flashctl [config flags] <command> [-dry-run] [-f decks.yaml] [-user id]

commands:
  seed                create the default decks unless any already exist
  reconcile           report broken deck/card links and repair them (-dry-run: report only)
  upload-image FILE   upload an image to object storage and print its key`

// ownFlags are the flags flashctl reads itself; everything else on the
// command line belongs to the shared server configuration.
var ownFlags = []string{"-dry-run", "-f", "-user"}

// imageUploader hands out presigned upload URLs (services.ImageService).
type imageUploader interface {
	UploadURL(ctx context.Context, userID string) (key string, url string, err error)
}

type App struct {
	maintenance *services.MaintenanceService
	images      imageUploader
	httpClient  *http.Client
	out         io.Writer
	readFile    func(string) ([]byte, error)
}

func NewApp(m *services.MaintenanceService, images imageUploader, out io.Writer) *App {
	return &App{
		maintenance: m,
		images:      images,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		out:         out,
		readFile:    os.ReadFile,
	}
}

// valueFlags lists every flag that takes a separate value, so its value is
// not mistaken for a command.
func valueFlags() []string {
	out := []string{"-c", "-config", "-f", "-user"}
	for _, f := range config.FlagNames {
		if f != "-seed" {
			out = append(out, f)
		}
	}
	return out
}

// Run executes the command named in args.
func (a *App) Run(ctx context.Context, args []string) error {
	positionals := flagx.Positionals(args, valueFlags())
	if len(positionals) == 0 {
		return errors.New(usage)
	}

	var (
		dryRun bool
		file   string
		user   string
	)
	fs := flag.NewFlagSet("flashctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&dryRun, "dry-run", false, "report problems without repairing them")
	fs.StringVar(&file, "f", "", "seed decks from this YAML file instead of the built-in set")
	fs.StringVar(&user, "user", "system", "owner prefix for uploaded images")
	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		return err
	}

	switch cmd := positionals[0]; cmd {
	case "seed":
		return a.seed(ctx, file)
	case "reconcile":
		return a.reconcile(ctx, dryRun)
	case "upload-image":
		if len(positionals) < 2 {
			return fmt.Errorf("upload-image needs a file\n%s", usage)
		}
		return a.uploadImage(ctx, user, positionals[1])
	case "help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (a *App) seed(ctx context.Context, file string) error {
	decks := services.DefaultSeedDecks()
	if file != "" {
		data, err := a.readFile(file)
		if err != nil {
			return err
		}
		decks, err = services.ParseSeedDecks(data)
		if err != nil {
			return err
		}
	}

	report, err := a.maintenance.Seed(ctx, decks)
	if errors.Is(err, common.ErrorAlreadySeeded) {
		fmt.Fprintln(a.out, "default decks already exist, nothing seeded")
		return a.print(report)
	}
	if err != nil {
		return err
	}

	return a.print(report)
}

func (a *App) reconcile(ctx context.Context, dryRun bool) error {
	report, err := a.maintenance.Reconcile(ctx, dryRun)
	if err != nil {
		return err
	}
	return a.print(report)
}

// uploadImage stores a local file the way clients do: fetch a presigned
// URL, PUT the bytes, then report the key to put in a card's images.
func (a *App) uploadImage(ctx context.Context, user, file string) error {
	data, err := a.readFile(file)
	if err != nil {
		return err
	}

	key, url, err := a.images.UploadURL(ctx, user)
	if err != nil {
		return fmt.Errorf("error getting upload url: %w", err)
	}

	if err := netx.PutPresigned(ctx, a.httpClient, url, "", data); err != nil {
		return err
	}

	return a.print(map[string]string{"key": key})
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
