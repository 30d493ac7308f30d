package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"notes.md":        FormatMarkdown,
		"NOTES.MARKDOWN":  FormatMarkdown,
		"week1.html":      FormatHTML,
		"saved/page.htm":  FormatHTML,
		"todo.txt":        FormatPlain,
		"no-extension":    FormatPlain,
		"lecture.srt.txt": FormatPlain,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, FormatOf(name))
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	input := "# Scheduling\n\n" +
		"Round robin uses a **time quantum** and _preemption_.\n" +
		"See [the slides](http://example.com/s.pdf) and `sched_yield`.\n\n" +
		"![diagram](d.png)\n\n" +
		"- first item\n" +
		"1. numbered item\n\n" +
		"> quoted line\n\n" +
		"---\n\n" +
		"```c\nint quantum_ms = 10;\n```\n"

	out := StripMarkdown(input)

	assert.Contains(t, out, "Scheduling")
	assert.NotContains(t, out, "#")
	assert.Contains(t, out, "Round robin uses a time quantum and preemption.")
	assert.Contains(t, out, "See the slides and sched_yield.")
	assert.Contains(t, out, "diagram")
	assert.NotContains(t, out, "d.png")
	assert.Contains(t, out, "first item")
	assert.Contains(t, out, "numbered item")
	assert.NotContains(t, out, "1.")
	assert.Contains(t, out, "quoted line")
	assert.NotContains(t, out, "---")
	assert.Contains(t, out, "int quantum_ms = 10;")
	assert.NotContains(t, out, "```")
}

func TestStripMarkdown_KeepsIdentifiers(t *testing.T) {
	assert.Equal(t, "call snake_case_name here", StripMarkdown("call snake_case_name here"))
}

func TestStripHTML(t *testing.T) {
	input := `<html><head><title>Week 1</title><style>p{}</style></head>
<body><h1>Processes</h1><script>alert(1)</script>
<p>A process has its   own address space.</p><!-- note -->
<ul><li>fork &amp; exec</li></ul>line<br/>break</body></html>`

	out := StripHTML(input)

	assert.Equal(t, "Processes\nA process has its own address space.\nfork & exec\nline\nbreak", out)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Scheduling", Title("intro\n# Scheduling\n## Sub", FormatMarkdown))
	assert.Equal(t, "", Title("## Only sub", FormatMarkdown))
	assert.Equal(t, "Q&A", Title("<title> Q&amp;A </title>", FormatHTML))
	assert.Equal(t, "", Title("# heading", FormatPlain))
}
