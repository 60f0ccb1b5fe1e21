package formvalidator

import (
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Gender is the grammatical gender of a field name, used by languages whose
// articles and pronouns agree with the noun.
type Gender int

const (
	Masculine Gender = iota
	Feminine
)

// Subject is the display name of a field together with its grammar metadata.
type Subject struct {
	Name   string
	Gender Gender
}

// Messages formats the user-facing validation messages. Returned strings may
// contain inline markup; field names are escaped by the implementations.
type Messages interface {
	// Required is shown when a required field is empty.
	Required(field Subject) string
	// Invalid is shown for length and pattern failures. When helpLinkID is not
	// empty the message carries a link with that id which opens contextual help.
	Invalid(field Subject, helpLinkID string) string
	// ConfirmationRequired is shown when a confirmation field is empty.
	ConfirmationRequired(primary Subject) string
	// Mismatch is shown when a confirmation field differs from its primary.
	Mismatch(field, primary Subject) string
}

// EnglishMessages is the default message strategy.
type EnglishMessages struct{}

func (EnglishMessages) Required(field Subject) string {
	return fmt.Sprintf("Please enter your %s.", html.EscapeString(field.Name))
}

func (EnglishMessages) Invalid(field Subject, helpLinkID string) string {
	msg := fmt.Sprintf("Please provide a valid %s.", html.EscapeString(field.Name))
	if helpLinkID == "" {
		return msg
	}
	return msg + fmt.Sprintf(` <a href="#" id="%s">Learn more</a>.`, html.EscapeString(helpLinkID))
}

func (EnglishMessages) ConfirmationRequired(primary Subject) string {
	return fmt.Sprintf("Please confirm your %s.", html.EscapeString(primary.Name))
}

func (EnglishMessages) Mismatch(field, primary Subject) string {
	return fmt.Sprintf("The %s does not match the %s.",
		html.EscapeString(field.Name), html.EscapeString(primary.Name))
}

// FrenchMessages picks indefinite and definite articles from the subject gender
// and elides them before a vowel.
type FrenchMessages struct{}

func (FrenchMessages) Required(field Subject) string {
	return fmt.Sprintf("Veuillez saisir votre %s.", html.EscapeString(field.Name))
}

func (FrenchMessages) Invalid(field Subject, helpLinkID string) string {
	article := "un"
	if field.Gender == Feminine {
		article = "une"
	}
	msg := fmt.Sprintf("Veuillez renseigner %s %s valide.", article, html.EscapeString(field.Name))
	if helpLinkID == "" {
		return msg
	}
	return msg + fmt.Sprintf(` <a href="#" id="%s">En savoir plus</a>.`, html.EscapeString(helpLinkID))
}

func (FrenchMessages) ConfirmationRequired(primary Subject) string {
	return fmt.Sprintf("Veuillez confirmer votre %s.", html.EscapeString(primary.Name))
}

func (FrenchMessages) Mismatch(field, primary Subject) string {
	return fmt.Sprintf("%s ne correspond pas %s.",
		capitalize(frenchDefinite(field)), frenchContracted(primary))
}

// frenchDefinite returns the noun with its definite article: "le mot de passe",
// "la date", "l'adresse".
func frenchDefinite(s Subject) string {
	name := html.EscapeString(s.Name)
	switch {
	case elides(s.Name):
		return "l'" + name
	case s.Gender == Feminine:
		return "la " + name
	default:
		return "le " + name
	}
}

// frenchContracted returns the noun introduced by "à" with the article
// contracted: "au mot de passe", "à la date", "à l'adresse".
func frenchContracted(s Subject) string {
	name := html.EscapeString(s.Name)
	switch {
	case elides(s.Name):
		return "à l'" + name
	case s.Gender == Feminine:
		return "à la " + name
	default:
		return "au " + name
	}
}

func elides(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return strings.ContainsRune("aeiouyàâäéèêëîïôöùûüæœ", unicode.ToLower(r))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// MessagesFor returns the message strategy for a language tag. Unknown tags fall
// back to English.
func MessagesFor(lang string) Messages {
	switch strings.ToLower(lang) {
	case "fr", "fr-fr", "fr-ca", "fr-be", "fr-ch":
		return FrenchMessages{}
	default:
		return EnglishMessages{}
	}
}
