package service

import "strings"

// feminineFirstNames first names that identify a woman wherever they appear
// among the given names.
var feminineFirstNames = map[string]struct{}{}

func init() {
	for _, n := range []string{
		"MARIE", "ROSE", "GRACE", "IRENE", "DIANE", "MONIQUE", "CLARISSE", "VANESSA",
		"THERESE", "YVETTE", "ELISE", "COLETTE", "GEORGETTE", "BERNADETTE", "ANTOINETTE",
		"ANGELE", "ALICE", "AMINATA", "FATOUMATA", "AWA", "RAMATOU", "ZAINAB", "SOLANGE",
		"ESTHER", "LUCIE", "FLORENCE", "ADELAIDE", "CHARLOTTE", "MARGUERITE", "RACHEL",
		"REBECCA", "SARAH", "LEA", "NOELIE", "JULIE", "JUSTINE", "SYLVIE", "MARTINE",
		"ISABELLE", "NATHALIE", "VALERIE", "PASCALINE", "CLOTILDE", "GENEVIEVE", "HELENE",
		"MADELEINE", "VICTORINE", "JEANNE", "PAULETTE", "ODETTE", "FRANCOISE", "CATHERINE",
		"ANNE", "SOPHIE", "CHANTAL", "BEATRICE", "VERONIQUE", "DOMINIQUE", "MURIEL", "BRIGITTE",
	} {
		feminineFirstNames[n] = struct{}{}
	}
}

// feminineEndings only the strong suffixes; weaker ones (A, IE, ISE) match
// too many male names.
var feminineEndings = []string{"INE", "ETTE", "ELLE"}

var accentFolder = strings.NewReplacer(
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"À", "A", "Â", "A", "Ä", "A",
	"Î", "I", "Ï", "I",
	"Ô", "O", "Ö", "O",
	"Ù", "U", "Û", "U", "Ü", "U",
	"Ç", "C",
)

// looksFeminine guesses from the given names whether the person is a woman.
func looksFeminine(prenoms string) bool {
	folded := accentFolder.Replace(strings.ToUpper(strings.TrimSpace(prenoms)))
	names := strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == '-' || r == ','
	})
	if len(names) == 0 {
		return false
	}

	for _, n := range names {
		if _, ok := feminineFirstNames[n]; ok {
			return true
		}
	}

	first := names[0]
	for _, suffix := range feminineEndings {
		if strings.HasSuffix(first, suffix) {
			return true
		}
	}
	return false
}
