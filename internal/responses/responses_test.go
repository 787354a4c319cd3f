package responses

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLibraryMissingDirFallsBackToDefaults(t *testing.T) {
	lib, err := NewLibrary(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err, "missing files must be reported")
	require.NotNil(t, lib, "library stays usable via defaults")

	assert.NotEmpty(t, lib.HelpMessage())
	assert.Equal(t, "No results found. Please try a different search term.", lib.ErrorMessage("no_results"))
	assert.Equal(t, "🔍 Searching...", lib.LoadingMessage("searching"))
	assert.Contains(t, lib.ContentTemplate("result_card"), "{{.Title}}")
}

func TestNewLibraryLoadsFromDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("main.json", `{"errors":{"no_results":"Nothing here, boss."}}`)
	write("buttons.json", `{"menu_texts":{"main_menu":"Pick one, {name}."}}`)
	write("content.json", `{"content_templates":{"result_card":"{{.Title}} only"}}`)

	lib, err := NewLibrary(dir)
	require.NoError(t, err)

	assert.Equal(t, "Nothing here, boss.", lib.ErrorMessage("no_results"))
	assert.Equal(t, "Pick one, Neo.", lib.MenuText("main_menu", "Neo"))
	assert.Equal(t, "{{.Title}} only", lib.ContentTemplate("result_card"))
}

func TestGreetingSubstitutesName(t *testing.T) {
	lib, _ := NewLibrary(t.TempDir())
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 10; i++ {
		text := lib.Greeting("morning", "Trinity", r)
		assert.NotContains(t, text, "{name}")
		assert.NotContains(t, text, "{greeting}")
	}
}

func TestGreetingUnknownTimeOfDayUsesGeneral(t *testing.T) {
	lib, _ := NewLibrary(t.TempDir())
	r := rand.New(rand.NewSource(1))

	assert.Equal(t, "Hello! 👋 How can I help you today?", lib.Greeting("midnight", "Neo", r))
}

func TestErrorAndLoadingFallbacks(t *testing.T) {
	lib, _ := NewLibrary(t.TempDir())

	assert.Equal(t, "Sorry, something went wrong. Please try again later.", lib.ErrorMessage("unmapped"))
	assert.Equal(t, "⚙️ Processing...", lib.LoadingMessage("unmapped"))
	assert.Equal(t, "What are you looking for?", lib.PromptMessage("unmapped"))
}

func TestMainMenuKeyboardLayout(t *testing.T) {
	lib, _ := NewLibrary(t.TempDir())

	kb := lib.MainMenuKeyboard()
	require.Len(t, kb.Keyboard, 2, "four buttons, two per row")
	assert.True(t, kb.ResizeKeyboard)

	assert.Equal(t, ButtonSearch, kb.Keyboard[0][0].Text)
	assert.Equal(t, ButtonTrending, kb.Keyboard[0][1].Text)
	assert.Equal(t, ButtonPopular, kb.Keyboard[1][0].Text)
	assert.Equal(t, ButtonHelp, kb.Keyboard[1][1].Text)
}

func TestWelcomeMessageVariants(t *testing.T) {
	lib, _ := NewLibrary(t.TempDir())

	assert.Contains(t, lib.WelcomeMessage(true), "Welcome to VLOP")
	assert.Contains(t, lib.WelcomeMessage(false), "Welcome back")
}
