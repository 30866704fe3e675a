package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shivansh-Raheja/admin-panel/internal/config"
	"github.com/Shivansh-Raheja/admin-panel/internal/confirm"
	"github.com/Shivansh-Raheja/admin-panel/internal/controller"
	"github.com/Shivansh-Raheja/admin-panel/internal/modules/auth"
	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
)

// apiprobe logs in and reads one resource through the same client the
// dashboard uses, printing what the backend answered. With -delete it
// removes the record given by -id after a y/N confirmation.
//
// Exit codes: 1 for refused or failed calls, 2 when the backend could not
// be reached.
func main() {
	_ = godotenv.Load()

	cfg, err := config.WebFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	name := flag.String("resource", "categories", "Resource name")
	id := flag.String("id", "", "Fetch a single record instead of the list")
	del := flag.Bool("delete", false, "Delete the record given by -id")
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "Admin email (skips login when empty)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")
	flag.Parse()

	resources, err := schema.Load(cfg.ResourcesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading resources: %v\n", err)
		os.Exit(1)
	}
	def, ok := resources.Lookup(*name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown resource %q\n", *name)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	hc := &http.Client{Timeout: *timeout}

	var token string
	if *email != "" {
		res, err := auth.NewService(cfg.APIBaseURL(), hc, nil).Login(ctx, *email, *password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Login failed: %s\n", resource.Describe(err))
			os.Exit(exitCode(err))
		}
		token = res.Token
		fmt.Printf("Logged in as %s\n", res.Name)
	}

	if *del {
		if *id == "" {
			fmt.Fprintln(os.Stderr, "Error: -delete needs -id")
			os.Exit(1)
		}
		os.Exit(remove(ctx, cfg, resources, def, token, hc, *id))
	}

	client := resource.NewClient(cfg.APIBaseURL(), def.Endpoint, resource.WithHTTPClient(hc), resource.WithToken(token))

	var out any
	if *id != "" {
		out, err = client.Get(ctx, *id)
	} else {
		var list []resource.Record
		list, err = client.List(ctx)
		fmt.Printf("%s: %d record(s)\n", def.Label, len(list))
		out = list
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s (%v)\n", resource.Describe(err), err)
		os.Exit(exitCode(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

// remove runs the dashboard's delete flow: load the collection, confirm on
// the terminal, delete and refetch.
func remove(ctx context.Context, cfg config.Web, resources *schema.Registry, def schema.Resource, token string, hc *http.Client, id string) int {
	b := controller.Builder{BaseURL: cfg.APIBaseURL(), Resources: resources, HTTP: hc}
	ctl := b.Build(def, token)
	defer ctl.Unmount()

	if err := ctl.Mount(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %s\n", def.Label, resource.Describe(err))
		return exitCode(err)
	}
	confirmed, err := ctl.Delete(ctx, id, confirm.Terminal(os.Stdin, os.Stdout))
	for _, a := range ctl.TakeAlerts() {
		fmt.Printf("[%s] %s\n", a.Kind, a.Message)
	}
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	case !confirmed:
		fmt.Println("Left unchanged.")
	default:
		fmt.Printf("%s: %d record(s) left\n", def.Label, ctl.Count())
	}
	return 0
}

func exitCode(err error) int {
	if resource.IsNetwork(err) {
		return 2
	}
	return 1
}
