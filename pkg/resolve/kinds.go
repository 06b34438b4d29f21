package resolve

import "fmt"

// Kind identifies which directory partition an object id belongs to. Each kind
// has exactly one lookup path and one cache partition.
type Kind string

const (
	KindUser          Kind = "user"
	KindGroup         Kind = "group"
	KindApplication   Kind = "application"
	KindDirectoryRole Kind = "directoryRole"
	KindNamedLocation Kind = "namedLocation"
	KindTermsOfUse    Kind = "termsOfUse"
	KindTenant        Kind = "tenant"

	// KindPrincipal covers ids whose object type is not known up front, such
	// as role assignment principals. The lookup path discovers the type.
	KindPrincipal Kind = "principal"
)

// placeholder labels follow the UnknownUser(id) convention so downstream
// formatting can treat a failed lookup as a legitimate display value.
var kindLabels = map[Kind]string{
	KindUser:          "User",
	KindGroup:         "Group",
	KindApplication:   "Application",
	KindDirectoryRole: "DirectoryRole",
	KindNamedLocation: "NamedLocation",
	KindTermsOfUse:    "TermsOfUse",
	KindTenant:        "Tenant",
	KindPrincipal:     "Principal",
}

// Placeholder builds the degraded display value for an id that could not be
// resolved (deleted object, no permission, transient error).
func Placeholder(kind Kind, id string) string {
	label, ok := kindLabels[kind]
	if !ok {
		label = "Object"
	}
	return fmt.Sprintf("Unknown%s(%s)", label, id)
}

// Entity is a directory object id paired with its resolved display value.
// Display is either the true display name/UPN from the directory or a
// Placeholder value.
type Entity struct {
	Kind    Kind   `json:"kind"`
	ID      string `json:"id"`
	Display string `json:"displayValue"`
}

// Reserved tokens the directory uses in place of object ids. They are not
// real objects and must never trigger a lookup.
const (
	TokenAll                   = "All"
	TokenNone                  = "None"
	TokenGuestsOrExternalUsers = "GuestsOrExternalUsers"
	TokenAllTrusted            = "AllTrusted"
	TokenOffice365             = "Office365"
)

var sentinelTokens = map[string]struct{}{
	TokenAll:                   {},
	TokenNone:                  {},
	TokenGuestsOrExternalUsers: {},
	TokenAllTrusted:            {},
	TokenOffice365:             {},
}

// IsSentinel reports whether id is one of the reserved tokens.
func IsSentinel(id string) bool {
	_, ok := sentinelTokens[id]
	return ok
}
