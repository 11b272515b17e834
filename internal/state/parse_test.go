package state

import (
	"testing"

	"github.com/neubot/nbwatch/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runningDoc = `<?xml version="1.0" encoding="utf-8"?>
<state t="1302">
    <active>true</active>
    <activity>idle</activity>
    <activity>rendezvous</activity>
    <activity current="true">negotiate</activity>
    <activity>test</activity>
    <activity>collect</activity>
    <test>
        <name>speedtest</name>
        <task state="done">latency</task>
        <task state="done">download</task>
        <task state="running">upload</task>
        <result tag="latency" unit="ms">12.3</result>
        <result tag="download" unit="Mbit/s">12.345</result>
    </test>
</state>`

func TestParse_RunningDocument(t *testing.T) {
	snap, err := Parse([]byte(runningDoc))
	require.NoError(t, err)

	assert.Equal(t, "1302", snap.Cursor)
	assert.True(t, snap.DaemonActive)

	require.Len(t, snap.Activities, 5)
	assert.Equal(t, "idle", snap.Activities[0].Label)
	current, ok := snap.CurrentActivity()
	require.True(t, ok)
	assert.Equal(t, "negotiate", current.Label)

	require.NotNil(t, snap.Test)
	assert.Equal(t, "speedtest", snap.Test.Name)
	assert.Equal(t, []Task{
		{Label: "latency", State: "done"},
		{Label: "download", State: "done"},
		{Label: "upload", State: "running"},
	}, snap.Test.Tasks)

	r, ok := snap.Test.ResultFor("download")
	require.True(t, ok, "results listed after tasks must still be indexed")
	assert.Equal(t, Result{Value: "12.345", Unit: "Mbit/s"}, r)
	assert.Equal(t, "12.345 Mbit/s", r.String())

	_, ok = snap.Test.ResultFor("upload")
	assert.False(t, ok)
}

func TestParse_IdleWithLatestTest(t *testing.T) {
	doc := `<state t="7"><active>false</active>
		<test><name>bittorrent</name><result tag="download" unit="Mbit/s">3.1</result>
		<task state="done">download</task></test></state>`

	snap, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.False(t, snap.DaemonActive)
	assert.Empty(t, snap.Activities)
	require.NotNil(t, snap.Test, "the latest test stays visible while idle")
	assert.Equal(t, "bittorrent", snap.Test.Name)
}

func TestParse_MissingFieldsDegrade(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Snapshot
	}{
		{
			name: "bare root",
			doc:  `<state/>`,
			want: Snapshot{},
		},
		{
			name: "no cursor attribute",
			doc:  `<state><active>true</active></state>`,
			want: Snapshot{DaemonActive: true},
		},
		{
			name: "active is not exactly true",
			doc:  `<state t="3"><active>yes</active></state>`,
			want: Snapshot{Cursor: "3"},
		},
		{
			name: "active trimmed",
			doc:  `<state t="3"><active>
				true
			</active></state>`,
			want: Snapshot{Cursor: "3", DaemonActive: true},
		},
		{
			name: "different root element",
			doc:  `<response><state t="9"/><active>true</active></response>`,
			want: Snapshot{Cursor: "9", DaemonActive: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, snap)
		})
	}
}

func TestParse_EmptyTestSection(t *testing.T) {
	snap, err := Parse([]byte(`<state t="1"><active>true</active><test/></state>`))
	require.NoError(t, err)

	require.NotNil(t, snap.Test)
	assert.Equal(t, "", snap.Test.Name)
	assert.Empty(t, snap.Test.Tasks)
	assert.Empty(t, snap.Test.Results)
}

func TestParse_MultipleCurrentActivities(t *testing.T) {
	doc := `<state t="4"><active>true</active>
		<activity current="true">rendezvous</activity>
		<activity current="true">negotiate</activity></state>`

	log := logger.NewBufferLogger()
	snap, err := NewParser(log).Parse([]byte(doc))
	require.NoError(t, err)

	require.Len(t, snap.Activities, 2)
	assert.True(t, snap.Activities[0].Current, "first claim wins")
	assert.False(t, snap.Activities[1].Current)
	assert.True(t, log.HasLevel("warn"))
}

func TestParse_ResultTags(t *testing.T) {
	doc := `<state><test>
		<result tag="download" unit="Mbit/s">1.0</result>
		<result tag="download" unit="Mbit/s">2.0</result>
		<result unit="ms">5</result>
		<task state="done">download</task>
		<task>upload</task>
	</test></state>`

	snap, err := Parse([]byte(doc))
	require.NoError(t, err)

	require.Len(t, snap.Test.Results, 1, "untagged results are dropped")
	r, _ := snap.Test.ResultFor("download")
	assert.Equal(t, "2.0", r.Value, "a later duplicate tag replaces the earlier one")

	assert.Equal(t, Task{Label: "upload", State: ""}, snap.Test.Tasks[1])
}

func TestParse_NestedText(t *testing.T) {
	snap, err := Parse([]byte(`<state><activity current="true">neg<b>otiate</b></activity></state>`))
	require.NoError(t, err)

	require.Len(t, snap.Activities, 1)
	assert.Equal(t, "negotiate", snap.Activities[0].Label)
}

func TestParse_MalformedDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty body", ""},
		{"whitespace only", "   \n"},
		{"truncated", `<state t="5"><active>true</act`},
		{"unclosed root", `<state t="5"><active>true</active>`},
		{"json", `{"t": 5, "current": "idle"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_DeclaredLatin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<state t=\"7\"><active>true</active>" +
		"<activity current=\"true\">d\xe9bit</activity>" +
		"<test><name>d\xe9bit</name><task state=\"done\">download</task></test></state>"

	snap, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "7", snap.Cursor)
	assert.True(t, snap.DaemonActive)
	require.Len(t, snap.Activities, 1)
	assert.Equal(t, "débit", snap.Activities[0].Label)
	require.NotNil(t, snap.Test)
	assert.Equal(t, "débit", snap.Test.Name)
}

func TestParse_UnknownEncodingIsMalformed(t *testing.T) {
	_, err := Parse([]byte(`<?xml version="1.0" encoding="x-no-such-charset"?><state t="1"/>`))
	assert.Error(t, err)
}

func TestResultFor_NilTest(t *testing.T) {
	var test *Test
	_, ok := test.ResultFor("download")
	assert.False(t, ok)
}

func TestCurrentActivity_None(t *testing.T) {
	snap := Snapshot{Activities: []Activity{{Label: "idle"}, {Label: "test"}}}
	_, ok := snap.CurrentActivity()
	assert.False(t, ok)
}
