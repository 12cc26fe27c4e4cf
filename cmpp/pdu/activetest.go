package pdu

// ActiveTest is the CMPP_ACTIVE_TEST keepalive ping. It has no body.
type ActiveTest struct{}

func (ActiveTest) CommandID() uint32 { return CommandActiveTest }
func (ActiveTest) Marshal() []byte   { return nil }

// ActiveTestResp is the CMPP_ACTIVE_TEST_RESP reply. It has no meaningful
// body beyond a single reserved byte.
type ActiveTestResp struct{}

func (ActiveTestResp) CommandID() uint32 { return CommandActiveTestResp }
func (ActiveTestResp) Marshal() []byte   { return []byte{0} }

// Terminate is the CMPP_TERMINATE frame; gateways and clients both may send
// it to end the session. It has no body.
type Terminate struct{}

func (Terminate) CommandID() uint32 { return CommandTerminate }
func (Terminate) Marshal() []byte   { return nil }

// TerminateResp acknowledges a Terminate.
type TerminateResp struct{}

func (TerminateResp) CommandID() uint32 { return CommandTerminateResp }
func (TerminateResp) Marshal() []byte   { return nil }
