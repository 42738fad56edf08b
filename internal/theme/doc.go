// Package theme holds the fixed set of immutable portfolio themes.
//
// A session selects exactly one *Theme at startup and passes the same
// pointer to every view module:
//
//	th, err := theme.Select(theme.NameDark, theme.SelectOptions{Term: os.Getenv("TERM")})
//	if err != nil {
//		return err
//	}
//	page := view.Home(leaves, view.Props{Theme: th})
//
// Reselection is a full swap to another registry pointer (see Toggle);
// themes have no mutators.
package theme
