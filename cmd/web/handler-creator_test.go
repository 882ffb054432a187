package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/gymplan/internal/e2etest"
	"github.com/myrjola/gymplan/internal/testhelpers"
)

func squatFields() map[string]string {
	return map[string]string{
		"Name":     "Squat",
		"Series":   "3",
		"Reps":     "5",
		"Increase": "2.5",
		"Weight":   "100",
	}
}

func benchFields() map[string]string {
	return map[string]string{
		"Name":     "Bench Press",
		"Series":   "2",
		"Reps":     "8",
		"Increase": "1.25",
		"Weight":   "60",
	}
}

// startDraft registers a new user and sets the draft day count.
func startDraft(ctx context.Context, t *testing.T, client *e2etest.Client, days int) *goquery.Document {
	t.Helper()
	if _, err := client.Register(ctx); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	doc, err := client.GetDoc(ctx, "/creator")
	if err != nil {
		t.Fatalf("Failed to get creator: %v", err)
	}
	doc, err = client.SubmitForm(ctx, doc, "/creator/days", map[string]string{"Number of days": fmt.Sprint(days)})
	if err != nil {
		t.Fatalf("Failed to set day count: %v", err)
	}
	return doc
}

// addExercise submits the exercise form of a day and returns the page redirected to.
func addExercise(
	ctx context.Context,
	t *testing.T,
	client *e2etest.Client,
	editor string,
	day int,
	fields map[string]string,
) *goquery.Document {
	t.Helper()
	action := fmt.Sprintf("/%s/days/%d/exercises/new", editor, day)
	doc, err := client.GetDoc(ctx, action)
	if err != nil {
		t.Fatalf("Failed to get exercise form: %v", err)
	}
	if doc, err = client.SubmitForm(ctx, doc, action, fields); err != nil {
		t.Fatalf("Failed to add exercise: %v", err)
	}
	return doc
}

func exerciseSummaries(doc *goquery.Document, dayIndex int) []string {
	var summaries []string
	doc.Find(fmt.Sprintf("#day-%d .exercises li span", dayIndex)).Each(func(_ int, s *goquery.Selection) {
		summaries = append(summaries, strings.TrimSpace(s.Text()))
	})
	return summaries
}

func Test_application_creator(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	t.Run("Day count creates empty days", func(t *testing.T) {
		doc := startDraft(ctx, t, client, 2)
		if got := doc.Find("article.day h2").Length(); got != 2 {
			t.Fatalf("Expected 2 days, got %d", got)
		}
		if got := doc.Find("article.day h2").First().Text(); got != "Day 1" {
			t.Errorf("Expected first day to be labelled 'Day 1', got %q", got)
		}
	})

	t.Run("Adding exercises lists them under the day", func(t *testing.T) {
		addExercise(ctx, t, client, "creator", 0, squatFields())
		doc := addExercise(ctx, t, client, "creator", 0, benchFields())

		want := []string{
			"Squat — 3 series, 5 reps, 100kg (+2.5)",
			"Bench Press — 2 series, 8 reps, 60kg (+1.25)",
		}
		got := exerciseSummaries(doc, 0)
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("Expected exercises %q, got %q", want, got)
		}
		if got = exerciseSummaries(doc, 1); len(got) != 0 {
			t.Errorf("Expected second day to stay empty, got %q", got)
		}
	})

	t.Run("Invalid exercise is rejected", func(t *testing.T) {
		tests := []struct {
			name  string
			field string
			value string
		}{
			{name: "empty name", field: "name", value: "   "},
			{name: "zero series", field: "series", value: "0"},
			{name: "unparsable reps", field: "reps", value: "many"},
			{name: "negative weight", field: "weight", value: "-5"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				values := url.Values{
					"name":     {"Deadlift"},
					"series":   {"1"},
					"reps":     {"5"},
					"increase": {"5"},
					"weight":   {"140"},
				}
				values.Set(tt.field, tt.value)
				resp, postErr := client.PostForm(ctx, "/creator/days/1/exercises/new", values)
				if postErr != nil {
					t.Fatalf("Failed to post exercise: %v", postErr)
				}
				defer resp.Body.Close()
				if resp.StatusCode != http.StatusUnprocessableEntity {
					t.Fatalf("Expected status %d, got %d", http.StatusUnprocessableEntity, resp.StatusCode)
				}
				doc, parseErr := goquery.NewDocumentFromReader(resp.Body)
				if parseErr != nil {
					t.Fatalf("Failed to parse document: %v", parseErr)
				}
				if got := doc.Find("p.error").AttrOr("data-field", ""); got != tt.field {
					t.Errorf("Expected error for field %q, got %q", tt.field, got)
				}
			})
		}
	})

	t.Run("Editing an exercise", func(t *testing.T) {
		doc, getErr := client.GetDoc(ctx, "/creator")
		if getErr != nil {
			t.Fatalf("Failed to get creator: %v", getErr)
		}
		editURL := doc.Find("#day-0 .exercises li a").First().AttrOr("href", "")
		if editURL == "" {
			t.Fatal("Expected an edit link")
		}
		if doc, getErr = client.GetDoc(ctx, editURL); getErr != nil {
			t.Fatalf("Failed to get edit form: %v", getErr)
		}
		if got := doc.Find("input#name").AttrOr("value", ""); got != "Squat" {
			t.Errorf("Expected edit form to be prefilled with 'Squat', got %q", got)
		}
		fields := squatFields()
		fields["Name"] = "Front Squat"
		if doc, getErr = client.SubmitForm(ctx, doc, editURL, fields); getErr != nil {
			t.Fatalf("Failed to edit exercise: %v", getErr)
		}
		if got := exerciseSummaries(doc, 0)[0]; !strings.HasPrefix(got, "Front Squat — 3 series") {
			t.Errorf("Expected edited exercise to keep its position, got %q", got)
		}
	})

	t.Run("Deleting an exercise", func(t *testing.T) {
		doc, getErr := client.GetDoc(ctx, "/creator")
		if getErr != nil {
			t.Fatalf("Failed to get creator: %v", getErr)
		}
		deleteURL := doc.Find("#day-0 .exercises li form").Last().AttrOr("action", "")
		if doc, getErr = client.SubmitForm(ctx, doc, deleteURL, nil); getErr != nil {
			t.Fatalf("Failed to delete exercise: %v", getErr)
		}
		if got := exerciseSummaries(doc, 0); len(got) != 1 {
			t.Errorf("Expected one exercise after delete, got %q", got)
		}
		// Deleting again is not an error.
		resp, postErr := client.PostForm(ctx, deleteURL, nil)
		if postErr != nil {
			t.Fatalf("Failed to delete exercise again: %v", postErr)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected repeated delete to redirect to the creator, got status %d", resp.StatusCode)
		}
	})

	t.Run("Committing the draft opens the plan", func(t *testing.T) {
		doc, getErr := client.GetDoc(ctx, "/creator")
		if getErr != nil {
			t.Fatalf("Failed to get creator: %v", getErr)
		}
		if doc, getErr = client.SubmitForm(ctx, doc, "/creator/commit", nil); getErr != nil {
			t.Fatalf("Failed to commit: %v", getErr)
		}
		if got := doc.Find("details.day").Length(); got != 2 {
			t.Errorf("Expected 2 plan days, got %d", got)
		}
		if got := doc.Find("#day-0 article.exercise h3").First().Text(); got != "Front Squat" {
			t.Errorf("Expected 'Front Squat' in the plan, got %q", got)
		}

		// The draft is kept for further editing after a commit.
		if doc, getErr = client.GetDoc(ctx, "/creator"); getErr != nil {
			t.Fatalf("Failed to get creator: %v", getErr)
		}
		if got := doc.Find("article.day").Length(); got != 2 {
			t.Errorf("Expected the draft to keep 2 days after commit, got %d", got)
		}
	})
}

func Test_application_creator_rejections(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()
	if _, err = client.Register(ctx); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	tests := []struct {
		name   string
		path   string
		values url.Values
	}{
		{name: "commit without days", path: "/creator/commit", values: nil},
		{name: "too few days", path: "/creator/days", values: url.Values{"days": {"0"}}},
		{name: "too many days", path: "/creator/days", values: url.Values{"days": {"8"}}},
		{name: "unparsable days", path: "/creator/days", values: url.Values{"days": {"three"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, postErr := client.PostForm(ctx, tt.path, tt.values)
			if postErr != nil {
				t.Fatalf("Failed to post: %v", postErr)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("Expected status %d, got %d", http.StatusUnprocessableEntity, resp.StatusCode)
			}
			doc, parseErr := goquery.NewDocumentFromReader(resp.Body)
			if parseErr != nil {
				t.Fatalf("Failed to parse document: %v", parseErr)
			}
			if doc.Find("p.error").Length() != 1 {
				t.Error("Expected an error message")
			}
		})
	}
}

func Test_application_creator_requiresAuthentication(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	doc, err := server.Client().GetDoc(ctx, "/creator")
	if err != nil {
		t.Fatalf("Failed to get creator: %v", err)
	}
	checkButtonPresence(t, doc, "Register", 1)
}
