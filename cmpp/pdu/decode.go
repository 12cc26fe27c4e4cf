package pdu

import cmpperrors "github.com/Ucell-first/cmpp30/cmpp/errors"

// Decode parses a frame body into its typed Message given the header's
// commandId, so the receive dispatcher (session package) never touches raw
// bytes directly.
func Decode(commandID uint32, body []byte) (Message, error) {
	switch commandID {
	case CommandConnect:
		return UnmarshalConnect(body)
	case CommandConnectResp:
		return UnmarshalConnectResp(body)
	case CommandSubmit:
		return Submit{}, cmpperrors.New("CMPP_SUBMIT is not an inbound frame")
	case CommandSubmitResp:
		return UnmarshalSubmitResp(body)
	case CommandDeliver:
		return UnmarshalDeliver(body)
	case CommandDeliverResp:
		return UnmarshalDeliverResp(body)
	case CommandActiveTest:
		return ActiveTest{}, nil
	case CommandActiveTestResp:
		return ActiveTestResp{}, nil
	case CommandTerminate:
		return Terminate{}, nil
	case CommandTerminateResp:
		return TerminateResp{}, nil
	default:
		return nil, cmpperrors.New("unknown command id")
	}
}
