package resolve

// Field describes one credential value and the names it can be supplied under.
type Field struct {
	// Name is the human readable name used in error messages.
	Name string
	// Key is the koanf key shared by all layers.
	Key string
	// Env is the environment variable consulted for the value.
	Env string
	// Flag is the command line flag (without leading dashes).
	Flag string
}

// The environment variable names are an external contract and must stay stable.
var (
	FieldEmail      = Field{Name: "Email", Key: "email", Env: "SM_EMAIL", Flag: "email"}
	FieldPassword   = Field{Name: "Password", Key: "password", Env: "SM_PASSWORD", Flag: "password"}
	FieldSession    = Field{Name: "Session", Key: "session", Env: "SM_SESSION", Flag: "session"}
	FieldSessionSig = Field{Name: "Session signature", Key: "session_sig", Env: "SM_SESSION_SIG", Flag: "session-sig"}
	FieldToken      = Field{Name: "JWT Token", Key: "token", Env: "SM_TOKEN", Flag: "jwt"}
	FieldStudentID  = Field{Name: "Student ID", Key: "student_id", Env: "SM_STUDENT_ID", Flag: "student-id"}
	FieldClassID    = Field{Name: "Class ID", Key: "class_id", Env: "SM_CLASS_ID", Flag: "class-id"}
)

var fields = []Field{
	FieldEmail,
	FieldPassword,
	FieldSession,
	FieldSessionSig,
	FieldToken,
	FieldStudentID,
	FieldClassID,
}

// Fields returns every known credential field.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// FieldByEnv returns the field read from the given environment variable.
func FieldByEnv(name string) (Field, bool) {
	for _, f := range fields {
		if f.Env == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByKey returns the field with the given koanf key.
func FieldByKey(key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}
