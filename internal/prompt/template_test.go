package prompt

import (
	"strings"
	"testing"
)

func TestTemplateRender(t *testing.T) {
	tpl := New("solo", "Talk about {{topic}} for {{duration}} minutes. {{topic}}!")
	if got := tpl.Variables(); len(got) != 2 || got[0] != "topic" || got[1] != "duration" {
		t.Fatalf("Variables = %q", got)
	}

	out, err := tpl.Render(map[string]string{"topic": "AI", "duration": "3"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "Talk about AI for 3 minutes. AI!" {
		t.Errorf("Render = %q", out)
	}
}

func TestTemplateMissingVariable(t *testing.T) {
	_, err := New("solo", "{{topic}} {{style}}").Render(map[string]string{"topic": "x"})
	if err == nil || !strings.Contains(err.Error(), "style") || !strings.Contains(err.Error(), "solo") {
		t.Fatalf("err = %v", err)
	}
}

func TestTemplateSections(t *testing.T) {
	tpl := New("brief", "Topic: {{topic}}\n{{#brief}}Background:\n{{brief}}\n{{/brief}}End")

	out, err := tpl.Render(map[string]string{"topic": "tides"})
	if err != nil {
		t.Fatalf("Render without brief: %v", err)
	}
	if out != "Topic: tides\nEnd" {
		t.Errorf("Render = %q", out)
	}

	out, err = tpl.Render(map[string]string{"topic": "tides", "brief": "The moon pulls."})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Topic: tides\nBackground:\nThe moon pulls.\nEnd" {
		t.Errorf("Render = %q", out)
	}

	if out, _ := tpl.Render(map[string]string{"topic": "tides", "brief": "  "}); strings.Contains(out, "Background") {
		t.Errorf("blank brief rendered its section: %q", out)
	}
}

func TestTemplateMismatchedSection(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	New("bad", "{{#a}}x{{/b}}")
}
