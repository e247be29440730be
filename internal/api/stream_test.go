package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/case-dashboard/internal/dashboard"
	"github.com/case-dashboard/internal/domain"
)

func dialStream(t *testing.T) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(newTestServer(t, nil).Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) StreamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestStream_InitialState(t *testing.T) {
	conn := dialStream(t)

	msg := readMessage(t, conn)
	assert.Equal(t, MessageCharts, msg.Type)
	assert.Equal(t, dashboard.Ticket(1), msg.Ticket)
	require.NotNil(t, msg.Result)
	assert.Equal(t, domain.AllClinicians, msg.Result.Clinician)
	assert.Len(t, msg.Charts, 2)
}

func TestStream_Selection(t *testing.T) {
	conn := dialStream(t)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"selection": 2}))
	msg := readMessage(t, conn)
	assert.Equal(t, dashboard.Ticket(2), msg.Ticket)
	require.NotNil(t, msg.Selection)
	assert.Equal(t, 2, *msg.Selection)
	assert.Equal(t, "dr.ruiz", msg.Result.Clinician)
	assert.Equal(t, domain.CountTable{{Category: "Radioterapia", Count: 1}}, msg.Result.TreatmentType)

	require.NoError(t, conn.WriteJSON(map[string]any{"selection": nil}))
	msg = readMessage(t, conn)
	assert.Nil(t, msg.Selection)
	assert.Equal(t, domain.AllClinicians, msg.Result.Clinician)
}

func TestStream_MalformedFrame(t *testing.T) {
	conn := dialStream(t)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"selection":"x"}`)))
	msg := readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	require.NotNil(t, msg.Error)
	assert.Equal(t, domain.ErrInvalidInput, msg.Error.Code)
}

func TestStream_LatestSelectionWins(t *testing.T) {
	conn := dialStream(t)
	readMessage(t, conn)

	selections := []int{1, 3, 2, 9, 1, 3}
	for _, i := range selections {
		require.NoError(t, conn.WriteJSON(map[string]any{"selection": i}))
	}
	last := dashboard.Ticket(len(selections) + 1)

	var prev dashboard.Ticket = 1
	for {
		msg := readMessage(t, conn)
		require.Equal(t, MessageCharts, msg.Type)
		// Results never arrive out of order
		require.Greater(t, msg.Ticket, prev)
		prev = msg.Ticket
		if msg.Ticket == last {
			assert.Equal(t, "dra.gomez", msg.Result.Clinician)
			break
		}
	}
}
