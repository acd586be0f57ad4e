package credential

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is written to every saved record set.
// Files without a version predate versioning and are treated as revision 0.
const SchemaVersion = 2

// StorageMode selects where an office password lives.
type StorageMode string

const (
	// StorageSystem keeps the password in the OS secret store, keyed by email.
	StorageSystem StorageMode = "system"
	// StorageInline keeps the password as plaintext in the config file.
	StorageInline StorageMode = "inline"
)

// legacy tags written by revision 0 and 1
const (
	legacySystemTag = "SYSTEM"
	legacyInlineTag = "CONFIG"
)

// PasswordStorage is either SystemPassword or InlinePassword. The zero value is invalid.
type PasswordStorage struct {
	mode  StorageMode
	value string
}

// SystemPassword refers to a password kept in the secret store.
func SystemPassword() PasswordStorage {
	return PasswordStorage{mode: StorageSystem}
}

// InlinePassword holds password as plaintext.
func InlinePassword(password string) PasswordStorage {
	return PasswordStorage{mode: StorageInline, value: password}
}

// Mode returns the storage variant.
func (p PasswordStorage) Mode() StorageMode {
	return p.mode
}

// Inline returns the plaintext password if p is inline.
func (p PasswordStorage) Inline() (string, bool) {
	return p.value, p.mode == StorageInline
}

// MarshalYAML encodes system storage as the scalar "system" and inline storage as
// the single-key mapping {inline: <password>}.
func (p PasswordStorage) MarshalYAML() (any, error) {
	switch p.mode {
	case StorageSystem:
		return string(StorageSystem), nil
	case StorageInline:
		return map[string]string{string(StorageInline): p.value}, nil
	default:
		return nil, fmt.Errorf("invalid password storage mode %q", p.mode)
	}
}

// UnmarshalYAML accepts the current encoding and the legacy SYSTEM / {CONFIG: pw} tags.
func (p *PasswordStorage) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if strings.EqualFold(node.Value, string(StorageSystem)) {
			*p = SystemPassword()
			return nil
		}
		return fmt.Errorf("line %d: unknown password storage %q", node.Line, node.Value)

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: password storage must have exactly one variant", node.Line)
		}
		tag, value := node.Content[0].Value, node.Content[1]
		switch {
		case strings.EqualFold(tag, string(StorageInline)), tag == legacyInlineTag:
			var password string
			if err := value.Decode(&password); err != nil {
				return fmt.Errorf("line %d: inline password: %w", value.Line, err)
			}
			*p = InlinePassword(password)
			return nil
		case tag == legacySystemTag:
			*p = SystemPassword()
			return nil
		}
		return fmt.Errorf("line %d: unknown password storage %q", node.Line, tag)

	default:
		return fmt.Errorf("line %d: password storage must be a scalar or a mapping", node.Line)
	}
}

// OfficeCredentials are the Office 365 login. Email and password storage are always
// replaced together.
type OfficeCredentials struct {
	Email    string          `yaml:"email"`
	Password PasswordStorage `yaml:"password"`
}

// SessionCredentials are a captured login session. An empty string is a stored value;
// only parts missing from a legacy record are reported as absent.
type SessionCredentials struct {
	Session    string
	SessionSig string

	noSession    bool
	noSessionSig bool
}

type sessionDocument struct {
	Session    *string `yaml:"session"`
	SessionSig *string `yaml:"session_sig"`
}

// MarshalYAML writes both parts. A part missing from a legacy record stays null.
func (s SessionCredentials) MarshalYAML() (any, error) {
	var doc sessionDocument
	if !s.noSession {
		session := s.Session
		doc.Session = &session
	}
	if !s.noSessionSig {
		sig := s.SessionSig
		doc.SessionSig = &sig
	}
	return doc, nil
}

// UnmarshalYAML remembers which parts are absent or null.
func (s *SessionCredentials) UnmarshalYAML(node *yaml.Node) error {
	var doc sessionDocument
	if err := node.Decode(&doc); err != nil {
		return err
	}

	*s = SessionCredentials{}
	if doc.Session != nil {
		s.Session = *doc.Session
	} else {
		s.noSession = true
	}
	if doc.SessionSig != nil {
		s.SessionSig = *doc.SessionSig
	} else {
		s.noSessionSig = true
	}
	return nil
}

// StudentIdentity selects the student whose timetable is requested.
type StudentIdentity struct {
	ID      int64 `yaml:"id" validate:"gte=0"`
	ClassID int64 `yaml:"class_id" validate:"gte=0"`
}

// RecordSet is the persisted credential configuration. Every sub-record is optional.
type RecordSet struct {
	Version int
	Office  *OfficeCredentials
	Session *SessionCredentials
	Token   *string
	Student *StudentIdentity

	// smUser is the unused sm_user record of revision 1, carried through saves unchanged.
	smUser *yaml.Node
}

// Empty returns the canonical record set with no sub-records.
func Empty() *RecordSet {
	return &RecordSet{Version: SchemaVersion}
}

// IsEmpty reports whether no sub-record is set.
func (rs *RecordSet) IsEmpty() bool {
	return rs.Office == nil && rs.Session == nil && rs.Token == nil && rs.Student == nil && rs.smUser == nil
}

// document is the on-disk layout. Canonical keys are always written (null when unset)
// so an empty record set is still a complete file. Legacy keys are only read.
type document struct {
	Version int                 `yaml:"version"`
	Office  *OfficeCredentials  `yaml:"office"`
	Session *SessionCredentials `yaml:"session"`
	Token   *string             `yaml:"token"`
	Student *StudentIdentity    `yaml:"student"`
	SmUser  yaml.Node           `yaml:"sm_user,omitempty"`

	SmSession *SessionCredentials `yaml:"sm_session,omitempty"`
	JWTToken  *string             `yaml:"jwt_token,omitempty"`
}

// MarshalYAML writes rs in the current schema revision.
func (rs RecordSet) MarshalYAML() (any, error) {
	doc := document{
		Version: SchemaVersion,
		Office:  rs.Office,
		Session: rs.Session,
		Token:   rs.Token,
		Student: rs.Student,
	}
	if rs.smUser != nil {
		doc.SmUser = *rs.smUser
	}
	return doc, nil
}

// UnmarshalYAML reads any schema revision. Canonical keys win over legacy ones.
func (rs *RecordSet) UnmarshalYAML(node *yaml.Node) error {
	var doc document
	if err := node.Decode(&doc); err != nil {
		return err
	}

	*rs = RecordSet{
		Version: doc.Version,
		Office:  doc.Office,
		Session: doc.Session,
		Token:   doc.Token,
		Student: doc.Student,
	}
	if doc.SmUser.Kind != 0 && doc.SmUser.ShortTag() != "!!null" {
		smUser := doc.SmUser
		rs.smUser = &smUser
	}
	if rs.Session == nil {
		rs.Session = doc.SmSession
	}
	if rs.Token == nil {
		rs.Token = doc.JWTToken
	}

	if rs.Office != nil && rs.Office.Password.mode == "" {
		return fmt.Errorf("line %d: office credentials without password storage", node.Line)
	}

	return nil
}
