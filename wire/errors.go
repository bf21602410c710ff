package wire

// OEFErrorOperation identifies which outbound operation an OEFErrorMessage
// is reporting a failure for, or (Other/BadMessage/BadOperation) a
// core-side protocol fault unrelated to a specific prior operation.
//
// Grounded on messages.py's OEFErrorOperation enum; values match exactly.
type OEFErrorOperation int32

const (
	ErrOpRegisterService       OEFErrorOperation = 0
	ErrOpUnregisterService     OEFErrorOperation = 1
	ErrOpRegisterDescription   OEFErrorOperation = 2
	ErrOpUnregisterDescription OEFErrorOperation = 3
	ErrOpSearchServices        OEFErrorOperation = 0x4
	ErrOpSearchServicesWide    OEFErrorOperation = 0x5
	ErrOpSearchAgents          OEFErrorOperation = 0x6
	ErrOpSendMessage           OEFErrorOperation = 0x7
	ErrOpOther                 OEFErrorOperation = 0x99
	ErrOpBadMessage            OEFErrorOperation = 0x100
	ErrOpBadOperation          OEFErrorOperation = 0x101
)

func (o OEFErrorOperation) String() string {
	switch o {
	case ErrOpRegisterService:
		return "register_service"
	case ErrOpUnregisterService:
		return "unregister_service"
	case ErrOpRegisterDescription:
		return "register_description"
	case ErrOpUnregisterDescription:
		return "unregister_description"
	case ErrOpSearchServices:
		return "search_services"
	case ErrOpSearchServicesWide:
		return "search_services_wide"
	case ErrOpSearchAgents:
		return "search_agents"
	case ErrOpSendMessage:
		return "send_message"
	case ErrOpBadMessage:
		return "bad_message"
	case ErrOpBadOperation:
		return "bad_operation"
	default:
		return "other"
	}
}
