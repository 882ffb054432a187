package e2etest

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// FindInputForLabel finds the input or textarea labelled with labelText in the given form.
func FindInputForLabel(form *goquery.Selection, labelText string) (*goquery.Selection, error) {
	return findLabelled(form, labelText, "input", "textarea")
}

// FindSelectForLabel finds the select element labelled with labelText in the given form.
func FindSelectForLabel(form *goquery.Selection, labelText string) (*goquery.Selection, error) {
	return findLabelled(form, labelText, "select")
}

// findLabelled resolves a label either through its for attribute or by the control nested inside it. Only controls
// matching one of the tags are accepted.
func findLabelled(form *goquery.Selection, labelText string, tags ...string) (*goquery.Selection, error) {
	label := form.Find(fmt.Sprintf("label:contains(%q)", labelText)).First()
	if label.Length() == 0 {
		return nil, fmt.Errorf("label not found: %s", labelText)
	}

	var control *goquery.Selection
	if id, ok := label.Attr("for"); ok {
		control = form.Find(fmt.Sprintf("[id=%q]", id))
	} else {
		control = label.Find("*")
	}
	for _, tag := range tags {
		if matched := control.Filter(tag); matched.Length() > 0 {
			return matched.First(), nil
		}
	}
	return nil, fmt.Errorf("no %v labelled %q", tags, labelText)
}

// FindForm finds a form in the doc identified with action formActionURLPath and returns the form selection.
func FindForm(doc *goquery.Document, formActionURLPath string) (*goquery.Selection, error) {
	form := doc.Find(fmt.Sprintf("form[action=%q]", formActionURLPath))
	if form.Length() == 0 {
		return nil, fmt.Errorf("form not found: %s", formActionURLPath)
	}
	return form.First(), nil
}
