package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/gymplan/internal/e2etest"
	"github.com/myrjola/gymplan/internal/errors"
	"github.com/myrjola/gymplan/internal/logging"
	"github.com/myrjola/gymplan/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	testTimeout                = 10 * time.Second
	userRegistrationTimeout    = 30 * time.Second
	planTimeout                = time.Minute
	scenarioTimeout            = 30 * time.Second
	maxConcurrentRegistrations = 10
	maxConcurrentOperations    = 20
	planDays                   = 3
	exercisesPerDay            = 3
	bumpsPerScenario           = 5
	successRateThreshold       = 95.0
	expectedArgsCount          = 2
	percentageMultiplier       = 100
)

//nolint:gochecknoglobals // fixed input data.
var exerciseNames = []string{"Squat", "Bench Press", "Barbell Row", "Deadlift", "Overhead Press", "Lunge"}

// AuthenticatedUser holds a client with valid session.
type AuthenticatedUser struct {
	Client *e2etest.Client
	UserID string
}

func testAuth(client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

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

// registerUser creates a new client with its own session and registers a user with it.
func registerUser(ctx context.Context, url, hostname string, userIndex int) (*AuthenticatedUser, error) {
	client, err := e2etest.NewClient(url, hostname, url)
	if err != nil {
		return nil, fmt.Errorf("creating client for user %d: %w", userIndex, err)
	}
	if _, err = client.Register(ctx); err != nil {
		return nil, fmt.Errorf("registering user %d: %w", userIndex, err)
	}
	return &AuthenticatedUser{
		Client: client,
		UserID: fmt.Sprintf("user_%d", userIndex),
	}, nil
}

// setupUsers registers numUsers users concurrently.
func setupUsers(
	ctx context.Context,
	url, hostname string,
	numUsers int,
	logger *slog.Logger,
) ([]*AuthenticatedUser, error) {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting user registration", slog.Int("num_users", numUsers))

	var (
		users   = make([]*AuthenticatedUser, 0, numUsers)
		usersMu sync.Mutex
		g       errgroup.Group
	)
	g.SetLimit(maxConcurrentRegistrations)

	for i := range numUsers {
		g.Go(func() error {
			userCtx, cancel := context.WithTimeout(ctx, userRegistrationTimeout)
			defer cancel()

			user, err := registerUser(userCtx, url, hostname, i)
			if err != nil {
				return err
			}
			usersMu.Lock()
			users = append(users, user)
			usersMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return users, fmt.Errorf("registration failures: %w", err)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "All users registered successfully", slog.Int("total_users", len(users)))
	return users, nil
}

// buildPlan fills a draft through the creator and saves it.
func buildPlan(ctx context.Context, user *AuthenticatedUser) error {
	client := user.Client
	doc, err := client.GetDoc(ctx, "/creator")
	if err != nil {
		return fmt.Errorf("get creator: %w", err)
	}
	if doc, err = client.SubmitForm(ctx, doc, "/creator/days",
		map[string]string{"Number of days": strconv.Itoa(planDays)}); err != nil {
		return fmt.Errorf("set day count: %w", err)
	}
	for day := range planDays {
		action := fmt.Sprintf("/creator/days/%d/exercises/new", day)
		for i := range exercisesPerDay {
			if doc, err = client.GetDoc(ctx, action); err != nil {
				return fmt.Errorf("get exercise form: %w", err)
			}
			fields := map[string]string{
				"Name":     exerciseNames[(day+i)%len(exerciseNames)],
				"Series":   strconv.Itoa(2 + rand.IntN(3)), //nolint:gosec,mnd // 2-4 series.
				"Reps":     strconv.Itoa(5 + rand.IntN(6)), //nolint:gosec,mnd // 5-10 reps.
				"Increase": "2.5",
				"Weight":   strconv.Itoa(20 + 5*rand.IntN(12)), //nolint:gosec,mnd // 20-75kg.
			}
			if doc, err = client.SubmitForm(ctx, doc, action, fields); err != nil {
				return fmt.Errorf("add exercise to day %d: %w", day, err)
			}
		}
	}
	if _, err = client.SubmitForm(ctx, doc, "/creator/commit", nil); err != nil {
		return fmt.Errorf("commit plan: %w", err)
	}
	return nil
}

func buildPlans(ctx context.Context, users []*AuthenticatedUser, logger *slog.Logger) error {
	var (
		g       errgroup.Group
		failed  atomic.Int64
		firstMu sync.Mutex
		first   error
	)
	g.SetLimit(maxConcurrentRegistrations)

	for _, user := range users {
		g.Go(func() error {
			planCtx, cancel := context.WithTimeout(ctx, planTimeout)
			defer cancel()
			if err := buildPlan(planCtx, user); err != nil {
				failed.Add(1)
				firstMu.Lock()
				if first == nil {
					first = fmt.Errorf("user %s: %w", user.UserID, err)
				}
				firstMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if first != nil {
		logger.LogAttrs(ctx, slog.LevelError, "Some plans could not be built",
			slog.Int64("failed_count", failed.Load()),
			slog.Int64("successful_count", int64(len(users))-failed.Load()))
		return first
	}
	return nil
}

// planScenario simulates a training session: pick a set for a day and adjust series weights.
func planScenario(ctx context.Context, user *AuthenticatedUser, logger *slog.Logger) error {
	client := user.Client
	day := rand.IntN(planDays) //nolint:gosec // not security sensitive.

	doc, err := client.GetDoc(ctx, "/plan")
	if err != nil {
		return fmt.Errorf("get plan: %w", err)
	}

	selection := strconv.Itoa(rand.IntN(exercisesPerDay+1) - 1) //nolint:gosec // base set or a variant.
	if doc, err = client.SubmitForm(ctx, doc, fmt.Sprintf("/plan/days/%d/selection", day),
		map[string]string{"Set": selection}); err != nil {
		return fmt.Errorf("select set: %w", err)
	}

	for range bumpsPerScenario {
		var actions []string
		doc.Find(fmt.Sprintf("#day-%d article.exercise form", day)).Each(func(_ int, s *goquery.Selection) {
			action := s.AttrOr("action", "")
			if strings.HasSuffix(action, "/increase") || strings.HasSuffix(action, "/decrease") {
				actions = append(actions, action)
			}
		})
		if len(actions) == 0 {
			return errors.New("no series forms found on plan", slog.Int("day", day))
		}
		action := actions[rand.IntN(len(actions))] //nolint:gosec // not security sensitive.
		if doc, err = client.SubmitForm(ctx, doc, action, nil); err != nil {
			return fmt.Errorf("bump series weight: %w", err)
		}
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "Plan scenario completed",
		slog.String("user_id", user.UserID), slog.Int("day", day))
	return nil
}

// runLoadTest runs a plan scenario for every user concurrently.
func runLoadTest(ctx context.Context, users []*AuthenticatedUser, logger *slog.Logger) error {
	userCount := len(users)
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_users", userCount))

	var successCount, failureCount atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	for _, user := range users {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			if err := planScenario(scenarioCtx, user, logger); err != nil {
				failureCount.Add(1)
				// Individual failures count against the success rate but do not stop the other scenarios.
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.String("user_id", user.UserID), errors.SlogError(err))
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(userCount) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return errors.New("load test success rate below threshold", slog.Float64("success_rate", successRate))
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		numUsers = 10
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
		hostname = "localhost"
	}
	client, err := e2etest.NewClient(url, hostname, url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Running smoke test first")
	if err = testAuth(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "smoke test failed", errors.SlogError(err))
		os.Exit(1)
	}

	setupStart := time.Now()
	users, err := setupUsers(ctx, url, hostname, numUsers, logger)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failed to setup users", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "User setup completed",
		slog.Duration("setup_duration", time.Since(setupStart)),
		slog.Int("authenticated_users", len(users)))

	planStart := time.Now()
	if err = buildPlans(ctx, users, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "some plans failed, continuing with load test", errors.SlogError(err))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Plans built", slog.Duration("plan_duration", time.Since(planStart)))

	loadTestStart := time.Now()
	if err = runLoadTest(ctx, users, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)),
		slog.Duration("load_test_duration", time.Since(loadTestStart)),
		slog.Int("users_tested", len(users)))
}
