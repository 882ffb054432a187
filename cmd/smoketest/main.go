package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/myrjola/gymplan/internal/e2etest"
	"github.com/myrjola/gymplan/internal/errors"
	"github.com/myrjola/gymplan/internal/logging"
	"github.com/myrjola/gymplan/internal/testhelpers"
)

const smokeTimeout = 20 * time.Second

func testAuth(ctx context.Context, client *e2etest.Client) error {
	if _, err := client.Register(ctx); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	if _, err := client.Logout(ctx); err != nil {
		return fmt.Errorf("logout user: %w", err)
	}
	if _, err := client.Login(ctx); err != nil {
		return fmt.Errorf("login user: %w", err)
	}
	return nil
}

// testPlan builds and saves a one-day plan and bumps the weight of its first series.
func testPlan(ctx context.Context, client *e2etest.Client) error {
	doc, err := client.GetDoc(ctx, "/creator")
	if err != nil {
		return fmt.Errorf("get creator: %w", err)
	}
	if doc, err = client.SubmitForm(ctx, doc, "/creator/days", map[string]string{"Number of days": "1"}); err != nil {
		return fmt.Errorf("set day count: %w", err)
	}
	const newExercise = "/creator/days/0/exercises/new"
	if doc, err = client.GetDoc(ctx, newExercise); err != nil {
		return fmt.Errorf("get exercise form: %w", err)
	}
	if doc, err = client.SubmitForm(ctx, doc, newExercise, map[string]string{
		"Name":     "Squat",
		"Series":   "3",
		"Reps":     "5",
		"Increase": "2.5",
		"Weight":   "60",
	}); err != nil {
		return fmt.Errorf("add exercise: %w", err)
	}
	if doc, err = client.SubmitForm(ctx, doc, "/creator/commit", nil); err != nil {
		return fmt.Errorf("commit plan: %w", err)
	}

	action, ok := doc.Find("#day-0 form[action$='/series/0/increase']").Attr("action")
	if !ok {
		return errors.New("increase form not found on plan")
	}
	if doc, err = client.SubmitForm(ctx, doc, action, nil); err != nil {
		return fmt.Errorf("increase weight: %w", err)
	}
	if got := doc.Find("#day-0 form.series-weight input[name=weight]").First().AttrOr("value", ""); got != "62.5" {
		return errors.New("unexpected weight after increase", slog.String("weight", got))
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
		hostname = "localhost"
	}

	if client, err = e2etest.NewClient(url, hostname, url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", errors.SlogError(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(ctx, smokeTimeout)
	defer cancel()
	if err = testAuth(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing auth", errors.SlogError(err))
		os.Exit(1) //nolint:gocritic // the deferred cancel does not matter on exit.
	}
	if err = testPlan(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing plan", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
}
