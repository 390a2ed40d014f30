package readability_test

import (
	"testing"

	"github.com/sitedex/sitedex"
	"github.com/sitedex/sitedex/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractsArticleContent(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Class Schedule</title></head><body>
		<article>
			<h1>Class Schedule</h1>
			<p>Yoga runs every weekday morning at seven, followed by spinning at
			eight and strength training at nine. Weekend classes start at ten.</p>
			<p>All classes are included in the standard membership and require no
			advance booking unless marked otherwise on the timetable.</p>
		</article>
	</body></html>`

	result, err := readability.NewExtractor().Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "Class Schedule", result.Title)
	assert.Contains(t, result.ContentHTML, "Yoga runs every weekday morning")
}

func TestExtractor_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := readability.NewExtractor().Extract("")
	require.Error(t, err)
	assert.Equal(t, sitedex.EINVALID, sitedex.ErrorCode(err))
}
