package inject

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillq/pkg/hooks"
	"github.com/jingkaihe/skillq/pkg/notify"
	"github.com/jingkaihe/skillq/pkg/queue"
	"github.com/jingkaihe/skillq/pkg/skills"
)

type notification struct {
	level notify.Level
	text  string
}

type recordingNotifier struct {
	notifications []notification
	indicator     string
	cleared       int
}

func (r *recordingNotifier) Notify(level notify.Level, text string) {
	r.notifications = append(r.notifications, notification{level: level, text: text})
}

func (r *recordingNotifier) SetIndicator(text string) { r.indicator = text }

func (r *recordingNotifier) ClearIndicator() {
	r.indicator = ""
	r.cleared++
}

func writeSkill(t *testing.T, content string) skills.Skill {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "planning")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, skills.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return skills.Skill{Name: "planning", Description: "Plan work", Directory: dir, SourcePath: path}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain body",
			body: "Step 1\nStep 2",
			want: "<skill name=\"planning\"><![CDATA[Step 1\nStep 2]]></skill>",
		},
		{
			name: "markup is not escaped",
			body: "Use <b>bold</b> & more",
			want: `<skill name="planning"><![CDATA[Use <b>bold</b> & more]]></skill>`,
		},
		{
			name: "cdata terminator is split",
			body: "a]]>b",
			want: `<skill name="planning"><![CDATA[a]]]]><![CDATA[>b]]></skill>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Wrap("planning", tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnwrap(t *testing.T) {
	content, err := Wrap("planning", "a]]>b <tag/>")
	require.NoError(t, err)

	name, body, err := Unwrap(content)
	require.NoError(t, err)
	assert.Equal(t, "planning", name)
	assert.Equal(t, "a]]>b <tag/>", body)

	_, _, err = Unwrap("not xml")
	assert.Error(t, err)
}

func TestWrapEscapesName(t *testing.T) {
	got, err := Wrap(`a"b`, "x")
	require.NoError(t, err)
	assert.Equal(t, `<skill name="a&#34;b"><![CDATA[x]]></skill>`, got)
}

func TestBeforeSendEmptySlot(t *testing.T) {
	notifier := &recordingNotifier{}
	h := New(queue.NewSlot(), notifier)

	segments, err := h.BeforeSend(context.Background(), hooks.Message{Text: "hi"})
	require.NoError(t, err)
	assert.Empty(t, segments)
	assert.Equal(t, 0, notifier.cleared)
	assert.Empty(t, notifier.notifications)
}

func TestBeforeSendDrainsOnce(t *testing.T) {
	skill := writeSkill(t, "---\nname: planning\ndescription: Plan work\n---\n\n# Planning\nBreak it down.\n")
	slot := queue.NewSlot()
	slot.Set(skill)
	notifier := &recordingNotifier{indicator: queue.IndicatorText("planning")}
	h := New(slot, notifier)

	segments, err := h.BeforeSend(context.Background(), hooks.Message{Text: "first"})
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, hooks.Segment{
		Kind:    SegmentKind,
		Hidden:  true,
		Content: "<skill name=\"planning\"><![CDATA[# Planning\nBreak it down.\n]]></skill>",
	}, segments[0])
	assert.Equal(t, "", notifier.indicator)
	assert.Equal(t, 1, notifier.cleared)

	_, queued := slot.Get()
	assert.False(t, queued)

	segments, err = h.BeforeSend(context.Background(), hooks.Message{Text: "second"})
	require.NoError(t, err)
	assert.Empty(t, segments, "the second message carries no skill")
}

func TestBeforeSendReadFailure(t *testing.T) {
	skill := writeSkill(t, "---\nname: planning\ndescription: Plan work\n---\nbody\n")
	require.NoError(t, os.Remove(skill.SourcePath))

	slot := queue.NewSlot()
	slot.Set(skill)
	notifier := &recordingNotifier{}
	h := New(slot, notifier)

	segments, err := h.BeforeSend(context.Background(), hooks.Message{Text: "hi"})
	require.NoError(t, err, "the message must still go out")
	assert.Empty(t, segments)

	_, queued := slot.Get()
	assert.False(t, queued, "slot is cleared even when the read fails")
	assert.Equal(t, 1, notifier.cleared)
	assert.Equal(t, []notification{{level: notify.LevelWarning, text: "Failed to load skill 'planning'"}}, notifier.notifications)
}

func TestRegister(t *testing.T) {
	skill := writeSkill(t, "Just a body\n")
	slot := queue.NewSlot()
	slot.Set(skill)

	registry := hooks.NewRegistry()
	Register(registry, New(slot, nil))
	assert.Equal(t, []string{HookName}, registry.Names(hooks.HookTypeBeforeMessageSend))

	msg := registry.Trigger(context.Background(), hooks.Message{Text: "hello"})
	assert.Equal(t, "hello", msg.Text)
	require.Len(t, msg.Segments, 1)
	assert.Equal(t, `<skill name="planning"><![CDATA[Just a body
]]></skill>`, msg.Segments[0].Content)

	msg = registry.Trigger(context.Background(), hooks.Message{Text: "again"})
	assert.Empty(t, msg.Segments)
}
