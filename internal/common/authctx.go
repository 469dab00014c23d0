package common

import "context"

type ctxKey string

const (
	sessionSubjectKey ctxKey = "session/subject"
	subjectSlotKey    ctxKey = "session/subject-slot"
)

// WithSubjectSlot reserves a slot that WithSessionSubject fills in, letting
// outer middleware read a subject attached further down the chain.
func WithSubjectSlot(ctx context.Context) (context.Context, *string) {
	slot := new(string)
	return context.WithValue(ctx, subjectSlotKey, slot), slot
}

// WithSessionSubject stores the subject of a verified admin session on ctx.
func WithSessionSubject(ctx context.Context, subject string) context.Context {
	if slot, ok := ctx.Value(subjectSlotKey).(*string); ok && slot != nil {
		*slot = subject
	}
	return context.WithValue(ctx, sessionSubjectKey, subject)
}

// SessionSubject extracts the admin session subject from ctx if present.
func SessionSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(sessionSubjectKey).(string)
	return subject, ok && subject != ""
}
