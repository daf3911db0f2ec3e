package samurai

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLHelpers(t *testing.T) {
	dataURL := "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAIAAAACCAYAAABytg0kAAAAEklEQVQIW2P8z8AARAwMjDAGACwBA/+8RVWvAAAAAElFTkSuQmCC"
	parsedURL, err := url.Parse("https://www.samurai-sudoku.com/classic/")
	assert.NoError(t, err)

	t.Run("isValidURL", func(t *testing.T) {
		assert.True(t, isValidURL("https://www.samurai-sudoku.com/classic/"))
		assert.False(t, isValidURL("itIsNotAURL"))
		assert.False(t, isValidURL("/classic/"))
	})

	t.Run("createAbsoluteURL", func(t *testing.T) {
		assert.Equal(t, dataURL, createAbsoluteURL(dataURL, parsedURL))
		assert.Equal(t, "https://www.samurai-sudoku.com/images/grid.png", createAbsoluteURL("/images/grid.png", parsedURL))
		assert.Equal(t, "https://www.samurai-sudoku.com/classic/grid.png", createAbsoluteURL("grid.png", parsedURL))
		assert.Equal(t, "https://bing.com", createAbsoluteURL("https://bing.com", parsedURL))
		assert.Equal(t, "https://www.samurai-sudoku.com/classic/grid.png?v=2", createAbsoluteURL("grid.png?v=2#top", parsedURL))
		assert.Equal(t, "https://cdn.example.com/a.css", createAbsoluteURL("https://cdn.example.com/a.css#x", parsedURL))
		assert.Equal(t, "", createAbsoluteURL("", parsedURL))
		assert.Equal(t, "", createAbsoluteURL("grid.png", nil))
		assert.Equal(t, "#bar", createAbsoluteURL("#bar", parsedURL))
	})

	t.Run("sanitizeStyleURL", func(t *testing.T) {
		assert.Equal(t, "a.png", sanitizeStyleURL(`url("a.png")`))
		assert.Equal(t, "a.png", sanitizeStyleURL(`url('a.png')`))
		assert.Equal(t, "a.png", sanitizeStyleURL(`url( a.png )`))
	})

	t.Run("createDataURL", func(t *testing.T) {
		assert.Equal(t, "data:text/plain;base64,VGV4dGZvclRlc3Q=", createDataURL([]byte("TextforTest"), "text/plain"))
	})
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "31-Oct-2025 - Hard.pdf")

	assert.False(t, fileExists(path))
	assert.NoError(t, os.WriteFile(path, []byte("%PDF-"), 0644))
	assert.True(t, fileExists(path))
	assert.False(t, fileExists(dir))
}
