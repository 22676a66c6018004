package proposal

import "golang.org/x/text/unicode/norm"

// Field is a canonical proposal field name.
type Field string

const (
	Agreement  Field = "agreement"
	Title      Field = "title"
	Type       Field = "type"
	Theme      Field = "theme"
	Difficulty Field = "difficulty"
	Abstract   Field = "abstract"
	Name       Field = "name"
	Country    Field = "country"
	Bio        Field = "bio"
	Org        Field = "org"
	Size       Field = "size"
	Email      Field = "email"
	Avatar     Field = "avatar"
	Twitter    Field = "twitter"
	Secondary  Field = "secondary"
)

// QuestionAlias maps survey question text to canonical field names.
// It is the single source of truth for the record shape: a question that is
// not listed here means the form changed upstream.
var QuestionAlias = map[string]Field{
	"Speaker Agreement":                                    Agreement,
	"Session Title":                                        Title,
	"Session Type":                                         Type,
	"Session Theme":                                        Theme,
	"Session Difficulty":                                   Difficulty,
	"Session Abstract / Description":                       Abstract,
	"What's the primary speakers name?":                    Name,
	"Where is the primary speaker traveling from?":         Country,
	"Primary speakers background / bio?":                   Bio,
	"Primary Speaker's Organizational Affiliation":         Org,
	"Primary Speakers wearables size?":                     Size,
	"Primary speaker's email address?":                     Email,
	"Link to primary speaker's \u00a0Avatar / Profile Pic": Avatar,
	"Primary Speaker's Twitter handle?":                    Twitter,
	"Secondary Speaker Info":                               Secondary,
}

// SessionFields are the fields of the session view, in column order.
var SessionFields = []Field{Title, Type, Theme, Difficulty, Abstract}

// SpeakerFields are the fields of the speaker view, in column order.
var SpeakerFields = []Field{Agreement, Name, Country, Bio, Org, Size, Email, Avatar, Twitter, Secondary}

// LookupAlias resolves question text to its field. The text is compared in
// NFC form so composed and decomposed spellings match.
func LookupAlias(question string) (Field, bool) {
	f, ok := QuestionAlias[norm.NFC.String(question)]
	return f, ok
}
