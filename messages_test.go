package asyncschema_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	as "github.com/reoring/asyncschema"
)

func TestMessagesMerge(t *testing.T) {
	base := as.NewMessages(language.English, map[string]as.Template{
		as.MsgDefault:  as.Format("bad %s"),
		as.MsgRequired: as.Format("%s missing"),
	})
	overrides := map[string]as.Template{
		as.MsgRequired: as.TemplateFunc(func(args ...any) string { return fmt.Sprint("need ", args[0]) }),
		as.MsgEnum:     nil,
	}
	merged := base.Merge(overrides)

	assert.Equal(t, "need x", merged.Render(as.MsgRequired, "x"))
	assert.Equal(t, "x missing", base.Render(as.MsgRequired, "x"), "receiver is unchanged")
	assert.Len(t, overrides, 2, "overrides are unchanged")
	assert.Equal(t, []string{as.MsgDefault, as.MsgRequired}, merged.Keys())
	assert.Equal(t, "bad x", merged.Render("no.such.key", "x"), "unknown keys use the default template")
	assert.Equal(t, language.English, merged.Locale())

	_, ok := merged.Get(as.MsgEnum)
	assert.False(t, ok)
	assert.Equal(t, "", as.NewMessages(language.English, nil).Render(as.MsgRequired, "x"))
}

func TestFormatPlaceholders(t *testing.T) {
	assert.Equal(t, "a 1 {\"k\":[1]} % b", as.Format("%s %d %j %% %s").Render("a", 1, map[string]any{"k": []int{1}}, "b"))
	assert.Equal(t, "a %s", as.Format("%s %s").Render("a"), "missing arguments keep their placeholder")
	assert.Equal(t, "a", as.Format("%s").Render("a", "extra"))
}

func TestSetLocale(t *testing.T) {
	t.Cleanup(as.ResetDefaultMessages)

	got := as.SetLocale(language.MustParse("ja-JP"))
	assert.Equal(t, language.Japanese, got)
	assert.Equal(t, language.Japanese, as.DefaultMessages().Locale())

	err := validate(t, as.Fields(as.F("name", as.Rule{Required: true})), as.Object{})
	assert.Equal(t, []string{"name は必須です"}, messages(t, err))

	as.ResetDefaultMessages()
	err = validate(t, as.Fields(as.F("name", as.Rule{Required: true})), as.Object{})
	assert.Equal(t, []string{"name is required"}, messages(t, err))
}

func TestSetDefaultMessagesReachesExistingSchemas(t *testing.T) {
	t.Cleanup(as.ResetDefaultMessages)

	s := as.MustNew(as.Fields(as.F("name", as.Rule{Required: true})))
	as.SetDefaultMessages(as.DefaultMessages().Merge(map[string]as.Template{as.MsgRequired: as.Format("%s!")}))

	_, err := s.Validate(t.Context(), as.Object{})
	require.Error(t, err)
	assert.Equal(t, []string{"name!"}, messages(t, err))
}

func TestSchemaMessagesAreIsolated(t *testing.T) {
	desc := as.Fields(as.F("name", as.Rule{Required: true}))
	a := as.MustNew(desc)
	b := as.MustNew(desc)
	a.Messages(map[string]as.Template{as.MsgRequired: as.Format("A: %s")})

	_, err := a.Validate(t.Context(), as.Object{})
	assert.Equal(t, []string{"A: name"}, messages(t, err))
	_, err = b.Validate(t.Context(), as.Object{})
	assert.Equal(t, []string{"name is required"}, messages(t, err))
	assert.Equal(t, "name is required", as.DefaultMessages().Render(as.MsgRequired, "name"))
}
