package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"underscores become spaces", "Order_Sync", "Order Sync"},
		{"whitespace collapses", "  Order \t  Sync  ", "Order Sync"},
		{"allowed punctuation kept", "HR & Payroll (EU) - v2/Prod", "HR & Payroll (EU) - v2/Prod"},
		{"disallowed punctuation dropped", "Order.Sync#1!", "OrderSync1"},
		{"unicode letters kept", "Bestellung_Übertragung", "Bestellung Übertragung"},
		{"empty falls back", "", DefaultDisplayName},
		{"only symbols falls back", "__..!!", DefaultDisplayName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDisplayName(tt.input))
		})
	}
}

func TestFolderID(t *testing.T) {
	assert.Equal(t, "Folder_OrderSync", FolderID("OrderSync"))
	assert.Equal(t, "Folder_Order_Sync_v1_0", FolderID("Order Sync v1.0"))
	assert.Equal(t, "Folder_HR___Payroll", FolderID("HR - Payroll"))
}

func TestNodeID_IsPureFunction(t *testing.T) {
	folder := FolderID(NormalizeDisplayName("Order_Sync"))
	first := NodeID(folder, "StartEvent_1")
	second := NodeID(FolderID(NormalizeDisplayName("Order_Sync")), "StartEvent_1")
	assert.Equal(t, "Folder_Order_Sync_StartEvent_1", first)
	assert.Equal(t, first, second)
}

func TestRawID(t *testing.T) {
	raw, ok := RawID("Folder_A", "Folder_A_Process_1")
	assert.True(t, ok)
	assert.Equal(t, "Process_1", raw)

	_, ok = RawID("Folder_A", "Folder_B_Process_1")
	assert.False(t, ok)
}

func TestResolveFolderID(t *testing.T) {
	assert.Equal(t, "Folder_Order_Sync", ResolveFolderID("Folder_Order_Sync"))
	assert.Equal(t, "Folder_Order_Sync", ResolveFolderID("Order_Sync"))
	assert.Equal(t, "Folder_Order_Sync", ResolveFolderID("Order Sync"))
	assert.Equal(t, "Folder_Uploaded_iFlow", ResolveFolderID(""))
}
