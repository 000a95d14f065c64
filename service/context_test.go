package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A13xB0/GoOperator/types"
)

func executedResult(name, alias string, data, errOutcome types.Payload) types.ServiceResult {
	now := time.Now().UTC()
	return types.ServiceResult{
		ID:         "svc-" + name,
		Name:       name,
		Alias:      alias,
		Version:    "2.1.0",
		ExecutedAt: &now,
		Data:       data,
		Error:      errOutcome,
	}
}

func testTask(results ...types.ServiceResult) types.Task {
	return types.Task{
		Input:      map[string]any{"document": "scan.pdf"},
		Meta:       map[string]any{"trace": "abc-123"},
		TenantName: "acme",
		Service: types.ServiceIdentity{
			ID:            "svc-wordcount",
			Name:          "wordcount",
			Version:       "1.0.0",
			Configuration: map[string]any{"language": "en"},
		},
		Results: results,
	}
}

func mustContext(t *testing.T, task types.Task) *Context {
	t.Helper()
	c, err := NewContext(task)
	require.NoError(t, err)
	return c
}

func TestNewContext_RequiresServiceIdentity(t *testing.T) {
	t.Parallel()

	task := testTask()
	task.Service = types.ServiceIdentity{}

	_, err := NewContext(task)
	assert.Error(t, err)
}

func TestContext_Projections(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask())

	assert.Equal(t, map[string]any{"document": "scan.pdf"}, c.GetInput())
	assert.Equal(t, map[string]any{"trace": "abc-123"}, c.GetMeta())
	assert.Equal(t, map[string]any{"language": "en"}, c.GetConfiguration())
	assert.Equal(t, "acme", c.GetTenantName())
}

func TestContext_ProjectionsAbsent(t *testing.T) {
	t.Parallel()

	task := types.Task{Service: types.ServiceIdentity{Name: "wordcount"}}
	c := mustContext(t, task)

	assert.Nil(t, c.GetInput())
	assert.Nil(t, c.GetMeta())
	assert.Nil(t, c.GetConfiguration())
	assert.Equal(t, "", c.GetTenantName())
	assert.Empty(t, c.GetResults())
}

func TestContext_ServiceDataLookup(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask(
		executedResult("ocr", "", map[string]any{"text": "A"}, nil),
	))

	assert.Equal(t, map[string]any{"text": "A"}, c.GetServiceData("ocr"))
	assert.Nil(t, c.GetServiceData("missing"))
	assert.Nil(t, c.GetServiceError("ocr"))
}

func TestContext_FirstVersusLast(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask(
		executedResult("ocr", "", "first", nil),
		executedResult("ocr", "", "second", nil),
		executedResult("ocr", "", "third", nil),
	))

	assert.Equal(t, "first", c.GetServiceData("ocr"))
	assert.Equal(t, "third", c.GetLastServiceData("ocr"))
}

func TestContext_FirstVersusLastErrors(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask(
		executedResult("ocr", "", nil, "timeout"),
		executedResult("ocr", "", nil, "bad scan"),
	))

	assert.Equal(t, "timeout", c.GetServiceError("ocr"))
	assert.Equal(t, "bad scan", c.GetLastServiceError("ocr"))
	assert.Nil(t, c.GetServiceData("ocr"))
}

func TestContext_ServiceMeta(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask(
		executedResult("ocr", "", map[string]any{"text": "A"}, nil),
	))

	meta := c.GetServiceMeta("ocr")
	require.NotNil(t, meta.ExecutedAt)
	assert.Equal(t, "ocr", meta.Name)
	assert.Nil(t, meta.Data, "meta envelope must not expose data")

	notRun := c.GetServiceMeta("translate")
	assert.Nil(t, notRun.ExecutedAt, "unexecuted service must report a nil timestamp")
}

func TestContext_GetResultsVerbatim(t *testing.T) {
	t.Parallel()

	results := []types.ServiceResult{
		executedResult("ocr", "", "a", nil),
		executedResult("translate", "", "b", nil),
	}
	c := mustContext(t, testTask(results...))

	got := c.GetResults()
	require.Len(t, got, 2)
	assert.Equal(t, results, got)

	// Mutating the returned slice must not affect later reads.
	got[0].Data = "mutated"
	assert.Equal(t, "a", c.GetResults()[0].Data)
}

func TestInvoke_NormalReturn(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask())
	out := Invoke(c, func(ctx *Context) (types.Payload, error) {
		return map[string]any{"count": 3}, nil
	})

	assert.Equal(t, types.COMPLETED, out.Kind())
	assert.Equal(t, map[string]any{"count": 3}, out.Data())
}

func TestInvoke_ReturnedErrorFaults(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask())
	out := Invoke(c, func(ctx *Context) (types.Payload, error) {
		return nil, errors.New("downstream unavailable")
	})

	assert.Equal(t, types.FAULTED, out.Kind())
	assert.Equal(t, "downstream unavailable", out.Reason())
}

func TestInvoke_PanicFaults(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask())
	out := Invoke(c, func(ctx *Context) (types.Payload, error) {
		panic("nil map write")
	})

	assert.Equal(t, types.FAULTED, out.Kind())
	assert.Contains(t, out.Reason(), "nil map write")
}

func TestInvoke_RetryPreemptsHandler(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask())
	probed := false
	out := Invoke(c, func(ctx *Context) (types.Payload, error) {
		ctx.Retry(200 * time.Millisecond)
		probed = true
		return "unreachable", nil
	})

	assert.Equal(t, types.RETRIED, out.Kind())
	assert.Equal(t, 200*time.Millisecond, out.Delay())
	assert.False(t, probed, "code after Retry must not execute")
}

func TestInvoke_AbortPreemptsHandler(t *testing.T) {
	t.Parallel()

	c := mustContext(t, testTask())
	probed := false
	out := Invoke(c, func(ctx *Context) (types.Payload, error) {
		ctx.Abort("unsupported document")
		probed = true
		return "unreachable", nil
	})

	assert.Equal(t, types.ABORTED, out.Kind())
	assert.Equal(t, "unsupported document", out.Reason())
	assert.False(t, probed, "code after Abort must not execute")
}

func TestRetry_DelayClamping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		delay time.Duration
		want  time.Duration
	}{
		{"below minimum is raised", 50 * time.Millisecond, 100 * time.Millisecond},
		{"above minimum is kept", 500 * time.Millisecond, 500 * time.Millisecond},
		{"zero means no delay", 0, 0},
		{"negative means no delay", -time.Second, 0},
		{"exactly minimum is kept", 100 * time.Millisecond, 100 * time.Millisecond},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := mustContext(t, testTask())
			out := Invoke(c, func(ctx *Context) (types.Payload, error) {
				ctx.Retry(tc.delay)
				return nil, nil
			})
			require.Equal(t, types.RETRIED, out.Kind())
			assert.Equal(t, tc.want, out.Delay())
		})
	}
}
