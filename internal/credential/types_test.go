package credential

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPasswordStorage_YAML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want PasswordStorage
	}{
		{name: "system", in: "system", want: SystemPassword()},
		{name: "legacy system tag", in: "SYSTEM", want: SystemPassword()},
		{name: "inline", in: "inline: pw", want: InlinePassword("pw")},
		{name: "legacy config tag", in: "CONFIG: pw", want: InlinePassword("pw")},
		{name: "inline empty password", in: `inline: ""`, want: InlinePassword("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PasswordStorage
			require.NoError(t, yaml.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordStorage_YAMLRejectsInvalid(t *testing.T) {
	for _, in := range []string{
		"plaintext",
		"{inline: a, system: b}",
		"[system]",
		"other: pw",
	} {
		t.Run(in, func(t *testing.T) {
			var got PasswordStorage
			assert.Error(t, yaml.Unmarshal([]byte(in), &got))
		})
	}

	_, err := yaml.Marshal(PasswordStorage{})
	assert.Error(t, err)
}

func TestPasswordStorage_Accessors(t *testing.T) {
	pw, ok := InlinePassword("pw").Inline()
	assert.True(t, ok)
	assert.Equal(t, "pw", pw)
	assert.Equal(t, StorageInline, InlinePassword("pw").Mode())

	_, ok = SystemPassword().Inline()
	assert.False(t, ok)
	assert.Equal(t, StorageSystem, SystemPassword().Mode())
}

func TestRecordSet_DecodesLegacyRevision(t *testing.T) {
	// layout written by the revision that stored sm_session and jwt_token
	data := `---
office:
  email: a@b.com
  password: SYSTEM
sm_user:
  email: old@b.com
  password:
    CONFIG: old
sm_session:
  session: abc
  session_sig: def
jwt_token: tok
`
	var rs RecordSet
	require.NoError(t, yaml.Unmarshal([]byte(data), &rs))

	assert.Equal(t, 0, rs.Version)
	require.NotNil(t, rs.Office)
	assert.Equal(t, "a@b.com", rs.Office.Email)
	assert.Equal(t, SystemPassword(), rs.Office.Password)
	require.NotNil(t, rs.Session)
	assert.Equal(t, SessionCredentials{Session: "abc", SessionSig: "def"}, *rs.Session)
	require.NotNil(t, rs.Token)
	assert.Equal(t, "tok", *rs.Token)
	assert.Nil(t, rs.Student)
	require.NotNil(t, rs.smUser)

	out, err := yaml.Marshal(&rs)
	require.NoError(t, err)
	assert.Contains(t, string(out), "version: 2")
	assert.Contains(t, string(out), "sm_user:")
	assert.Contains(t, string(out), "old@b.com")
	assert.NotContains(t, string(out), "sm_session")
	assert.NotContains(t, string(out), "jwt_token")

	var again RecordSet
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, rs.Office, again.Office)
	assert.Equal(t, rs.Session, again.Session)
	assert.Equal(t, rs.Token, again.Token)
	require.NotNil(t, again.smUser)
}

func TestRecordSet_DecodesStudentRevision(t *testing.T) {
	data := `office:
  email: a@b.com
  password:
    CONFIG: pw
session:
  session: abc
student:
  id: 1234
  class_id: 56
`
	var rs RecordSet
	require.NoError(t, yaml.Unmarshal([]byte(data), &rs))

	require.NotNil(t, rs.Student)
	assert.Equal(t, StudentIdentity{ID: 1234, ClassID: 56}, *rs.Student)
	assert.Equal(t, InlinePassword("pw"), rs.Office.Password)

	session, sig := rs.SessionKeys()
	require.NotNil(t, session)
	assert.Equal(t, "abc", *session)
	assert.Nil(t, sig)
}

func TestRecordSet_CanonicalKeysWinOverLegacy(t *testing.T) {
	data := `version: 2
session:
  session: new
  session_sig: new-sig
sm_session:
  session: old
  session_sig: old-sig
token: new-token
jwt_token: old-token
`
	var rs RecordSet
	require.NoError(t, yaml.Unmarshal([]byte(data), &rs))

	assert.Equal(t, "new", rs.Session.Session)
	assert.Equal(t, "new-token", *rs.Token)
}

func TestRecordSet_NullLegacyUserIsDropped(t *testing.T) {
	var rs RecordSet
	require.NoError(t, yaml.Unmarshal([]byte("sm_user: ~\noffice: null\n"), &rs))

	assert.True(t, rs.IsEmpty())
}

func TestRecordSet_OfficeWithoutPasswordIsInvalid(t *testing.T) {
	var rs RecordSet
	err := yaml.Unmarshal([]byte("office:\n  email: a@b.com\n"), &rs)
	assert.Error(t, err)
}

func TestRecordSet_EmptyEncoding(t *testing.T) {
	out, err := yaml.Marshal(Empty())
	require.NoError(t, err)

	for _, key := range []string{"version: 2", "office: null", "session: null", "token: null", "student: null"} {
		assert.Contains(t, string(out), key)
	}
	assert.NotContains(t, string(out), "sm_user")
}

// recordSets returns every combination of present and absent sub-records, with both
// password storage variants for office.
func recordSets() map[string]*RecordSet {
	token := "bearer"
	offices := map[string]*OfficeCredentials{
		"no-office":     nil,
		"office-system": {Email: "a@b.com", Password: SystemPassword()},
		"office-inline": {Email: "a@b.com", Password: InlinePassword("pw: with yaml")},
	}

	out := make(map[string]*RecordSet)
	for officeName, office := range offices {
		for mask := 0; mask < 8; mask++ {
			rs := Empty()
			rs.Office = office
			if mask&1 != 0 {
				rs.Session = &SessionCredentials{Session: "s", SessionSig: "sig"}
			}
			if mask&2 != 0 {
				rs.Token = &token
			}
			if mask&4 != 0 {
				rs.Student = &StudentIdentity{ID: 7, ClassID: 0}
			}
			out[fmt.Sprintf("%s/%03b", officeName, mask)] = rs
		}
	}
	return out
}
