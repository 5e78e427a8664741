package documents

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "resume.pdf", want: "resume.pdf"},
		{in: "my resume (final).pdf", want: "myresumefinal.pdf"},
		{in: "Lebenslauf_Müller.docx", want: "LebenslaufMller.docx"},
		{in: "../../etc/passwd", want: "....etcpasswd"},
		{in: "简历", want: "file"},
		{in: "...", want: "file"},
		{in: "", want: "file"},
		{in: "a-b.c", want: "a-b.c"},
	}

	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOwnerSegment(t *testing.T) {
	t.Parallel()

	kept := []string{"u1", "user-42", "abc.def", "A1b2", "user_2abcDEF123"}
	for _, id := range kept {
		if got := OwnerSegment(id); got != id {
			t.Fatalf("OwnerSegment(%q) = %q, want unchanged", id, got)
		}
	}

	hashed := regexp.MustCompile(`^~[0-9a-f]{32}$`)
	escaped := []string{".", "..", "u/1", "a b", "ü", "~abc", strings.Repeat("a", 129)}
	seen := map[string]string{}
	for _, id := range escaped {
		got := OwnerSegment(id)
		if !hashed.MatchString(got) {
			t.Fatalf("OwnerSegment(%q) = %q, want hashed segment", id, got)
		}
		if prev, ok := seen[got]; ok {
			t.Fatalf("%q and %q share segment %q", prev, id, got)
		}
		seen[got] = id
		if OwnerSegment(id) != got {
			t.Fatalf("OwnerSegment(%q) is not stable", id)
		}
	}
}

func TestIssuedAt(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1700000000123).UTC()
	got, ok := IssuedAt(BuildStorageKey("user_2abc", CategoryResume, "cv.pdf", now))
	if !ok || !got.Equal(now) {
		t.Fatalf("IssuedAt = %v, %v; want %v", got, ok, now)
	}

	for _, key := range []string{"", "u1/resume", "u1/resume/cv.pdf", "u1/resume/-cv.pdf", "u1/resume/abc-cv.pdf", "u1/x/resume/1-cv.pdf"} {
		if _, ok := IssuedAt(key); ok {
			t.Fatalf("expected %q to have no issue time", key)
		}
	}
}

func TestBuildStorageKeyShape(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1700000000123)
	key := BuildStorageKey("u1", CategoryResume, "My CV (v2).pdf", now)
	if key != "u1/resume/1700000000123-MyCVv2.pdf" {
		t.Fatalf("unexpected key %q", key)
	}

	shape := regexp.MustCompile(`^[A-Za-z0-9._~-]+/(resume|coverLetter)/[0-9]+-[A-Za-z0-9.-]+$`)
	names := []string{"a.pdf", "ç.doc", "  ", "x/y\\z.txt", "cover letter.docx"}
	for _, owner := range []string{"owner.1", "user_2abc", "u1/../u2"} {
		for _, name := range names {
			got := BuildStorageKey(owner, CategoryCoverLetter, name, now)
			if !shape.MatchString(got) {
				t.Fatalf("key %q for owner %q name %q does not match expected shape", got, owner, name)
			}
		}
	}
}
