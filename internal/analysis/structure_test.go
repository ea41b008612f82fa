package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageFunctionLength(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    float64
		lengths []int
	}{
		{
			name: "no functions",
			code: "x = 1\nclass Empty:\n    pass\n",
			want: 0.0,
		},
		{
			name: "two functions",
			code: `def one():
    return 1

def three():
    a = 1
    b = 2
    return a + b
`,
			want:    2.0,
			lengths: []int{1, 3},
		},
		{
			name: "nested bodies are not counted",
			code: `def outer():
    if True:
        x = 1
        y = 2
    def inner():
        return 1
    return inner
`,
			want:    2.0,
			lengths: []int{3, 1},
		},
		{
			name: "methods count, async and lambda do not",
			code: `class Service:
    def start(self):
        self.running = True

async def fetch():
    a = 1
    b = 2
    return a

handler = lambda event: event
`,
			want:    1.0,
			lengths: []int{1},
		},
		{
			name: "comments and docstrings",
			code: `def documented():
    """Docs count as a statement."""
    # comments do not
    return 1
`,
			want:    2.0,
			lengths: []int{2},
		},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := p.Parse(tt.code)
			require.NoError(t, err)

			assert.Equal(t, tt.want, AverageFunctionLength(tree))
			assert.Equal(t, tt.lengths, FunctionLengths(tree))
		})
	}
}

func TestAverageFunctionLength_Fraction(t *testing.T) {
	p := newTestParser(t)
	tree, err := p.Parse("def a():\n    return 1\n\ndef b():\n    x = 1\n    return x\n")
	require.NoError(t, err)
	assert.Equal(t, 1.5, AverageFunctionLength(tree))
}
