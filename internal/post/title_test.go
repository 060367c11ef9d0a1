package post

import "testing"

func TestCapitalizeWords(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello world", "Hello World"},
		{"Hello World", "Hello World"},
		{"a tale of two cities", "A Tale Of Two Cities"},
		{"iPhone tips", "IPhone Tips"},
		{"keep CAPS", "Keep CAPS"},
		{"double  space", "Double  Space"},
		{"élan vital", "Élan Vital"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CapitalizeWords(tt.input); got != tt.expected {
				t.Errorf("CapitalizeWords(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCapitalizeWordsIdempotent(t *testing.T) {
	once := CapitalizeWords("hello world")
	if twice := CapitalizeWords(once); twice != once {
		t.Errorf("CapitalizeWords is not idempotent: %q → %q", once, twice)
	}
}

func TestTitleCaser(t *testing.T) {
	tests := []struct {
		style    string
		input    string
		expected string
		wantErr  bool
	}{
		{style: "", input: "hello world", expected: "Hello World"},
		{style: TitleCaseWords, input: "the end of it", expected: "The End Of It"},
		{style: TitleCaseAP, input: "the end of it", expected: "The End of It"},
		{style: TitleCaseChicago, input: "a tale of two cities", expected: "A Tale of Two Cities"},
		{style: "shouting", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			fn, err := TitleCaser(tt.style)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TitleCaser(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := fn(tt.input); got != tt.expected {
				t.Errorf("%s(%q) = %q, want %q", tt.style, tt.input, got, tt.expected)
			}
		})
	}
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path      string
		separator string
		expected  string
	}{
		{"posts/hello-world.md", "-", "Hello World"},
		{"posts/my_first_post.md", "_", "My First Post"},
		{"Hello World.md", " ", "Hello World"},
		{"posts/single.md", "-", "Single"},
		{"posts/no-extension", "-", "No Extension"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			opts := Options{TitleSeparator: tt.separator}.withDefaults()
			if got := titleFromPath(tt.path, opts); got != tt.expected {
				t.Errorf("titleFromPath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCategoryFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"posts/travel/rome.md", "travel"},
		{"/srv/blog/posts/food/2024/pasta.md", "food"},
		{"posts/rome.md", ""},
		{"articles/travel/rome.md", ""},
		{"rome.md", ""},
		{"myposts/travel/rome.md", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := categoryFromPath(tt.path); got != tt.expected {
				t.Errorf("categoryFromPath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}
