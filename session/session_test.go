package session

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/internal/testutil"
)

// Interface compliance (compile-time assertion)
var (
	_ core.SessionStore = (*InMemoryStore)(nil)
	_ core.SessionStore = (*SQLiteStore)(nil)
	_ core.SessionStore = (*S3Store)(nil)
)

// fakeS3 is an in-memory S3API keyed by bucket/key.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = data
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

type storeFactory func(t *testing.T) core.SessionStore

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) core.SessionStore { return NewInMemoryStore() },
		"sqlite": func(t *testing.T) core.SessionStore {
			st, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "sessions.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })
			return st
		},
		"s3": func(t *testing.T) core.SessionStore {
			return NewS3StoreWithClient(newFakeS3(), "support", "/sessions/")
		},
	}
}

func TestStores_UnknownSessionIsEmpty(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			msgs, err := factory(t).Get(context.Background(), "nobody")
			require.NoError(t, err)
			assert.NotNil(t, msgs)
			assert.Empty(t, msgs)
		})
	}
}

func TestStores_PutThenGet(t *testing.T) {
	transcript := testutil.NewTranscriptBuilder().
		User("Where is ABC123?").
		ToolCall("call-1", "track_package", map[string]any{"packageId": "ABC123"}).
		ToolResult("call-1", "track_package", core.Success(map[string]any{"status": "In Progress"})).
		Assistant("It is in progress.").
		Build()

	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := factory(t)

			require.NoError(t, st.Put(ctx, "alice", transcript))
			got, err := st.Get(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, got, 4)

			assert.Equal(t, core.RoleUser, got[0].Role)
			assert.Equal(t, "track_package", got[1].ToolCalls[0].Name)
			assert.Equal(t, "ABC123", got[1].ToolCalls[0].Arguments["packageId"])
			assert.Equal(t, "call-1", got[2].ToolCallID)
			require.NotNil(t, got[2].Result)
			assert.True(t, got[2].Result.Success)
			assert.Equal(t, "It is in progress.", got[3].Content)
		})
	}
}

func TestStores_PutReplacesWholeTranscript(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := factory(t)

			require.NoError(t, st.Put(ctx, "s", testutil.NewTranscriptBuilder().User("a").Assistant("b").Build()))
			require.NoError(t, st.Put(ctx, "s", testutil.NewTranscriptBuilder().User("c").Build()))

			got, err := st.Get(ctx, "s")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "c", got[0].Content)
		})
	}
}

func TestStores_EmptySessionID(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			_, err := st.Get(context.Background(), "")
			assert.ErrorIs(t, err, core.ErrEmptySessionID)
			assert.ErrorIs(t, st.Put(context.Background(), "", nil), core.ErrEmptySessionID)
		})
	}
}

// Two invocations read the same transcript and write back independently:
// the second write wins and the first turn is lost.
func TestStores_ConcurrentWritersLoseUpdate(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := factory(t)

			base := testutil.NewTranscriptBuilder().User("hi").Assistant("hello").Build()
			require.NoError(t, st.Put(ctx, "bob", base))

			first, err := st.Get(ctx, "bob")
			require.NoError(t, err)
			second, err := st.Get(ctx, "bob")
			require.NoError(t, err)

			first = append(first, core.NewUserMessage("turn one"), core.NewAssistantMessage("one"))
			second = append(second, core.NewUserMessage("turn two"), core.NewAssistantMessage("two"))

			require.NoError(t, st.Put(ctx, "bob", first))
			require.NoError(t, st.Put(ctx, "bob", second))

			got, err := st.Get(ctx, "bob")
			require.NoError(t, err)
			require.Len(t, got, 4)
			assert.Equal(t, "turn two", got[2].Content)
			for _, m := range got {
				assert.NotEqual(t, "turn one", m.Content)
			}
		})
	}
}

func TestInMemoryStore_IsolatesCallerMutation(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()

	msgs := testutil.NewTranscriptBuilder().User("original").Build()
	require.NoError(t, st.Put(ctx, "s", msgs))
	msgs[0].Content = "mutated"

	got, err := st.Get(ctx, "s")
	require.NoError(t, err)
	got[0].Content = "mutated again"

	again, err := st.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
	assert.Equal(t, 1, st.Len())
}

func TestS3Store_ObjectKeyUsesPrefix(t *testing.T) {
	fake := newFakeS3()
	st := NewS3StoreWithClient(fake, "support", "/sessions/")

	require.NoError(t, st.Put(context.Background(), "carol", []core.Message{core.NewUserMessage("hi")}))
	_, ok := fake.objects["support/sessions/carol.json"]
	assert.True(t, ok)
	assert.Equal(t, 1, fake.puts)
}

func TestS3Store_SessionIDsAreNotPaths(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	st := NewS3StoreWithClient(fake, "support", "sessions")

	require.NoError(t, st.Put(ctx, "bob", []core.Message{core.NewUserMessage("secret")}))

	msgs, err := st.Get(ctx, "mallory/../bob")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, st.Put(ctx, "../escape", []core.Message{core.NewUserMessage("x")}))
	for key := range fake.objects {
		assert.True(t, strings.HasPrefix(key, "support/sessions/"), key)
	}
	_, ok := fake.objects["support/sessions/..%2Fescape.json"]
	assert.True(t, ok)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3StoreConfig{})
	assert.Error(t, err)
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(context.Background(), "")
	assert.Error(t, err)
}

func TestCodec_EmptyInput(t *testing.T) {
	msgs, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = Decode([]byte("{not json"))
	assert.Error(t, err)
}
