package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/recipebox/internal/client/client"
	"github.com/dmitrijs2005/recipebox/internal/client/collection"
	"github.com/dmitrijs2005/recipebox/internal/client/config"
	"github.com/dmitrijs2005/recipebox/internal/client/models"
	"github.com/dmitrijs2005/recipebox/internal/common"
)

type App struct {
	config  *config.Config
	api     client.Client
	recipes *collection.Collection
	user    *models.User
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.NewHTTPClient(c)
	if err != nil {
		return nil, err
	}
	return newApp(c, api, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, api client.Client, in *bufio.Reader, out io.Writer) *App {
	a := &App{config: c, api: api, reader: in, out: out}
	a.recipes = collection.New(a.fetchPage, c.PageLimit)
	return a
}

func (a *App) fetchPage(ctx context.Context, q collection.Query, page, limit int) (*models.RecipePage, error) {
	if q.Mode == collection.ModeMine {
		return a.api.ListMyRecipes(ctx, page, limit)
	}
	return a.api.ListRecipes(ctx, q.Search, page, limit)
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) status() string {
	s := ""
	if a.user != nil {
		s = a.user.Name
	}
	loaded, total, _ := a.recipes.Counts()
	if total > 0 || loaded > 0 {
		q := a.recipes.Query()
		view := string(q.Mode)
		if q.Search != "" {
			view += ":" + q.Search
		}
		s = fmt.Sprintf("%s %s %d/%d", s, view, loaded, total)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// report prints err for the user. An authentication failure outside
// login, register and logout forgets the session and prompts for credentials.
func (a *App) report(ctx context.Context, cmd string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	var apiErr *client.APIError
	switch {
	case errors.Is(err, common.ErrUnauthenticated) && cmd == "logout":
		// The session was already gone server-side.
		a.user = nil
	case errors.Is(err, common.ErrUnauthenticated) && cmd != "login" && cmd != "register":
		a.user = nil
		a.println("Your session has expired or you are not logged in.")
		if err := a.Login(ctx); err != nil {
			a.report(ctx, "login", err)
		}
	case errors.Is(err, collection.ErrNoMore):
		a.println("No more recipes.")
	case errors.Is(err, client.ErrUnavailable):
		a.println("Server unavailable, try again later.")
	case errors.As(err, &apiErr) && len(apiErr.Fields) > 0:
		for _, f := range apiErr.Fields {
			a.println(" -", f.Message)
		}
	default:
		a.println("Error:", err.Error())
	}
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to RecipeBox CLI (type 'help' for commands)")
	if err := a.api.Ping(ctx); err != nil {
		a.report(ctx, "ping", err)
	}
	runREPL(ctx, a, a.status, a.reader)
}
