package repositories

// Condition is one search constraint. When In is non-empty it is an
// inclusion filter; otherwise it is an equality filter on Eq.
type Condition struct {
	Eq string
	In []string
}

// SearchParams maps field names to conditions. The semantics are
// backend-independent; translation to wire query syntax is each
// repository's job.
type SearchParams map[string]Condition

// Eq builds an equality condition.
func Eq(value string) Condition { return Condition{Eq: value} }

// In builds an inclusion condition.
func In(values ...string) Condition { return Condition{In: values} }

// Matches reports whether a field value satisfies the condition, for
// backends (and test doubles) that filter client-side.
func (c Condition) Matches(value string) bool {
	if len(c.In) > 0 {
		for _, v := range c.In {
			if v == value {
				return true
			}
		}
		return false
	}
	return value == c.Eq
}
