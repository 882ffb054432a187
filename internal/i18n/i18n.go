package i18n

import "fmt"

// Language represents a supported language.
type Language string

const (
	// English is the English language.
	English Language = "en"
	// Polish is the Polish language.
	Polish Language = "pl"
)

// DefaultLanguage is the fallback language.
const DefaultLanguage = Language(English)

// translations maps language codes to translation keys and their values. Values used with Translatef are
// fmt format strings.
//
//nolint:gochecknoglobals // static lookup table.
var translations = map[Language]map[string]string{
	English: {
		"app.title":                    "Gymplan",
		"home.tagline":                 "Your training plan, day by day.",
		"home.signin":                  "Sign in",
		"home.register":                "Register",
		"home.plan.summary":            "Your plan has %d training days.",
		"home.plan.empty":              "You have no saved plan yet.",
		"home.plan.link":               "Open plan",
		"home.creator.link":            "Create a new plan",
		"auth.register.failed":         "Registration failed: ",
		"auth.login.failed":            "Sign in failed: ",
		"nav.plan":                     "Plan",
		"nav.creator":                  "Creator",
		"nav.catalogue":                "Exercises",
		"nav.signout":                  "Sign out",
		"language.picker.label":        "Language",
		"language.picker.submit":       "Change",
		"language.name.en":             "English",
		"language.name.pl":             "Polski",
		"day.label":                    "Day %d",
		"day.exercises.empty":          "No exercises.",
		"set.base":                     "Base set",
		"set.variant":                  "Set %s",
		"exercise.summary":             "%s — %d series, %d reps, %skg (+%s)",
		"exercise.add":                 "Add exercise",
		"exercise.add.title":           "Add exercise",
		"exercise.edit":                "Edit",
		"exercise.edit.title":          "Edit exercise",
		"exercise.delete":              "Delete",
		"exercise.delete.confirm":      "Are you sure you want to delete this exercise?",
		"exercise.form.name":           "Name",
		"exercise.form.series":         "Series",
		"exercise.form.reps":           "Reps",
		"exercise.form.increase":       "Increase",
		"exercise.form.weight":         "Weight",
		"exercise.form.save":           "Save",
		"exercise.form.cancel":         "Cancel",
		"validation.name":              "Enter the name of the exercise.",
		"validation.series":            "Series must be a positive whole number.",
		"validation.reps":              "Reps must be a positive whole number.",
		"validation.increase":          "Increase must be a positive number (e.g. 2, 2.5, 5).",
		"validation.weight":            "Weight must be a non-negative number.",
		"validation.selectedSetIndex":  "Choose a valid set.",
		"validation.days":              "Enter a number of days from 1 to 7.",
		"validation.emptyDraft":        "Choose the number of days before saving the plan.",
		"creator.title":                "Plan creator",
		"creator.empty":                "Choose the number of days to start a new plan.",
		"creator.days.label":           "Number of days",
		"creator.days.submit":          "Apply",
		"creator.commit":               "Save plan",
		"plan.title":                   "Training plan",
		"plan.empty":                   "No saved plan.",
		"plan.set.label":               "Set",
		"plan.set.submit":              "Choose",
		"plan.reps":                    "Reps: %d",
		"plan.series":                  "Series %d",
		"plan.series.weight":           "Series %d weight",
		"plan.series.save":             "Save",
		"plan.series.decrease":         "Decrease",
		"plan.series.increase":         "Increase",
		"plan.manage":                  "Manage exercises",
		"plan.mix.enable":              "Enable set mixing",
		"plan.mix.disable":             "Disable set mixing",
		"status.saved":                 "All changes saved.",
		"status.pending":               "Saving…",
		"status.failed":                "Saving failed. Your next change will try again.",
		"catalogue.title":              "Exercises",
		"catalogue.back":               "Back to exercises",
		"catalogue.category.full_body": "Full body",
		"catalogue.category.upper":     "Upper body",
		"catalogue.category.lower":     "Lower body",
		"error.title":                  "Something went wrong",
		"error.retry":                  "Try again",
		"notfound.title":               "404 Not Found",
		"notfound.message":             "The page you are looking for does not exist.",
		"notfound.home":                "Go to the front page",
	},
	Polish: {
		"app.title":                    "Gymplan",
		"home.tagline":                 "Twój plan treningowy, dzień po dniu.",
		"home.signin":                  "Zaloguj",
		"home.register":                "Zarejestruj",
		"home.plan.summary":            "Twój plan ma %d dni treningowych.",
		"home.plan.empty":              "Nie masz jeszcze zapisanego planu.",
		"home.plan.link":               "Otwórz plan",
		"home.creator.link":            "Utwórz nowy plan",
		"auth.register.failed":         "Tworzenie konta nie powiodło się: ",
		"auth.login.failed":            "Logowanie nie powiodło się: ",
		"nav.plan":                     "Plan",
		"nav.creator":                  "Kreator",
		"nav.catalogue":                "Ćwiczenia",
		"nav.signout":                  "Wyloguj",
		"language.picker.label":        "Język",
		"language.picker.submit":       "Zmień",
		"language.name.en":             "English",
		"language.name.pl":             "Polski",
		"day.label":                    "Dzień %d",
		"day.exercises.empty":          "Brak ćwiczeń.",
		"set.base":                     "Zestaw podstawowy",
		"set.variant":                  "Zestaw %s",
		"exercise.summary":             "%s — %d serie, %d powtórzeń, %skg (+%s)",
		"exercise.add":                 "Dodaj ćwiczenie",
		"exercise.add.title":           "Dodaj ćwiczenie",
		"exercise.edit":                "Edytuj",
		"exercise.edit.title":          "Edytuj ćwiczenie",
		"exercise.delete":              "Usuń",
		"exercise.delete.confirm":      "Czy na pewno chcesz usunąć to ćwiczenie?",
		"exercise.form.name":           "Nazwa",
		"exercise.form.series":         "Serie",
		"exercise.form.reps":           "Powtórzenia",
		"exercise.form.increase":       "Przyrost",
		"exercise.form.weight":         "Ciężar",
		"exercise.form.save":           "Zapisz",
		"exercise.form.cancel":         "Anuluj",
		"validation.name":              "Podaj nazwę ćwiczenia.",
		"validation.series":            "Liczba serii musi być dodatnią liczbą całkowitą.",
		"validation.reps":              "Liczba powtórzeń musi być dodatnią liczbą całkowitą.",
		"validation.increase":          "Przyrost musi być dodatnią liczbą (np. 2, 2.5, 5).",
		"validation.weight":            "Ciężar musi być liczbą nieujemną.",
		"validation.selectedSetIndex":  "Wybierz poprawny zestaw.",
		"validation.days":              "Wprowadź liczbę dni od 1 do 7.",
		"validation.emptyDraft":        "Wybierz liczbę dni przed zapisaniem planu.",
		"creator.title":                "Kreator planu",
		"creator.empty":                "Wybierz liczbę dni, aby rozpocząć nowy plan.",
		"creator.days.label":           "Liczba dni",
		"creator.days.submit":          "Zastosuj",
		"creator.commit":               "Zapisz plan",
		"plan.title":                   "Plan treningowy",
		"plan.empty":                   "Brak zapisanego planu.",
		"plan.set.label":               "Zestaw",
		"plan.set.submit":              "Wybierz",
		"plan.reps":                    "Powtórzenia: %d",
		"plan.series":                  "Seria %d",
		"plan.series.weight":           "Ciężar serii %d",
		"plan.series.save":             "Zapisz",
		"plan.series.decrease":         "Zmniejsz",
		"plan.series.increase":         "Zwiększ",
		"plan.manage":                  "Zarządzaj ćwiczeniami",
		"plan.mix.enable":              "Włącz mieszanie zestawów",
		"plan.mix.disable":             "Wyłącz mieszanie zestawów",
		"status.saved":                 "Wszystkie zmiany zapisane.",
		"status.pending":               "Zapisywanie…",
		"status.failed":                "Zapis nie powiódł się. Kolejna zmiana spróbuje ponownie.",
		"catalogue.title":              "Ćwiczenia",
		"catalogue.back":               "Powrót do ćwiczeń",
		"catalogue.category.full_body": "Całe ciało",
		"catalogue.category.upper":     "Góra ciała",
		"catalogue.category.lower":     "Dół ciała",
		"error.title":                  "Coś poszło nie tak",
		"error.retry":                  "Spróbuj ponownie",
		"notfound.title":               "404 Nie znaleziono",
		"notfound.message":             "Strona, której szukasz, nie istnieje.",
		"notfound.home":                "Przejdź do strony głównej",
	},
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{English, Polish}
}

// IsSupported checks if a language is supported.
func IsSupported(lang Language) bool {
	_, ok := translations[lang]
	return ok
}

// Translate returns the translation for the given key in the specified language.
// If the key is not found, it falls back to the default language.
// If still not found, it returns the key itself.
func Translate(lang Language, key string) string {
	if langTranslations, ok := translations[lang]; ok {
		if translation, ok := langTranslations[key]; ok {
			return translation
		}
	}

	if lang != DefaultLanguage {
		if translation, ok := translations[DefaultLanguage][key]; ok {
			return translation
		}
	}

	return key
}

// Translatef formats the translation of key with args.
func Translatef(lang Language, key string, args ...any) string {
	return fmt.Sprintf(Translate(lang, key), args...)
}
