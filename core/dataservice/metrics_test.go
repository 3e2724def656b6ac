package dataservice

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/relabs-tech/utilities/core"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")
	b := New[testMock, testMock](transportErr{err: errors.New("down")}, nil, WithMetrics(m))

	_, err := b.GetList(ListConfig[testMock]{UseMock: true, GetMockData: newDataSet}).Wait()
	require.NoError(t, err)
	_, err = b.GetList(ListConfig[testMock]{Endpoint: testURL}).Wait()
	require.Error(t, err)
	_, err = b.Delete(DeleteConfig[testMock, testMock]{UseMock: true, RemoveMockData: func(testMock) {}}).Wait()
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("list", "mock", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("list", "network", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("delete", "mock", "success")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.operationDuration))
}

func TestLogRequests(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	b := New[testMock, testMock](transportErr{err: errors.New("down")}, nil, WithLogger(logrus.NewEntry(log)))

	_, err := b.GetItem(ItemConfig[testMock]{
		UseMock:     true,
		GetMockData: func() testMock { return testMock{ID: 1} },
	}).Wait()
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())

	_, err = b.GetItem(ItemConfig[testMock]{
		UseMock:     true,
		GetMockData: func() testMock { return testMock{ID: 1} },
		LogRequests: true,
	}).Wait()
	require.NoError(t, err)
	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "request done", hook.LastEntry().Message)
	assert.Equal(t, core.ModeMock, hook.LastEntry().Data["mode"])

	hook.Reset()
	_, err = b.GetItem(ItemConfig[testMock]{Endpoint: testURL, LogRequests: true}).Wait()
	require.Error(t, err)
	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, testURL, hook.LastEntry().Data["endpoint"])
}
