package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Input decoding (program AST payloads)
	InputInfo            Code = 1000
	InputBadJSON         Code = 1001
	InputBadVersion      Code = 1002
	InputUnknownType     Code = 1003
	InputUnknownBinding  Code = 1004
	InputUnknownCallee   Code = 1005
	InputDuplicateFunc   Code = 1006
	InputDuplicateType   Code = 1007
	InputBadExpr         Code = 1008
	InputMissingBody     Code = 1009
	InputBadFileRef      Code = 1010
	InputDuplicateField  Code = 1011
	InputUnknownField    Code = 1012
	InputUnknownVariant  Code = 1013
	InputBadParamCount   Code = 1014
	InputUnknownTrait    Code = 1015
	InputDuplicateImpl   Code = 1016
	InputTraitMethodMiss Code = 1017

	// Project / manifest
	ProjInfo            Code = 2000
	ProjManifestSyntax  Code = 2001
	ProjManifestValue   Code = 2002
	ProjNoInputs        Code = 2003
	ProjDuplicateInput  Code = 2004
	ProjManifestMissing Code = 2005

	// Ownership inference
	InferInfo           Code = 3000
	InferNoConvergence  Code = 3001
	InferUnknownCallee  Code = 3002
	InferArityMismatch  Code = 3003
	InferUnresolvedHint Code = 3004
	InferReceiverOnFree Code = 3005

	// Emission planning
	PlanInfo          Code = 4000
	PlanUnplannedSite Code = 4001
	PlanTimings       Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown diagnostic",

	InputInfo:            "Input information",
	InputBadJSON:         "Malformed program payload",
	InputBadVersion:      "Unsupported payload schema version",
	InputUnknownType:     "Reference to unknown type",
	InputUnknownBinding:  "Reference to unknown binding",
	InputUnknownCallee:   "Reference to unknown function",
	InputDuplicateFunc:   "Duplicate function definition",
	InputDuplicateType:   "Duplicate type definition",
	InputBadExpr:         "Malformed expression node",
	InputMissingBody:     "Function body missing",
	InputBadFileRef:      "Span refers to unregistered file",
	InputDuplicateField:  "Duplicate struct field",
	InputUnknownField:    "Reference to unknown field",
	InputUnknownVariant:  "Reference to unknown enum variant",
	InputBadParamCount:   "Call argument count differs from signature",
	InputUnknownTrait:    "Reference to unknown trait",
	InputDuplicateImpl:   "Duplicate trait implementation",
	InputTraitMethodMiss: "Implementation missing trait method",

	ProjInfo:            "Project information",
	ProjManifestSyntax:  "Manifest is not valid TOML",
	ProjManifestValue:   "Invalid manifest value",
	ProjNoInputs:        "No input payloads",
	ProjDuplicateInput:  "Input listed twice",
	ProjManifestMissing: "Manifest not found",

	InferInfo:           "Inference information",
	InferNoConvergence:  "Ownership inference did not converge",
	InferUnknownCallee:  "Callee signature never resolved",
	InferArityMismatch:  "Call arity differs from known signature",
	InferUnresolvedHint: "Binding left unresolved after inference",
	InferReceiverOnFree: "Receiver recorded for a free function",

	PlanInfo:          "Planning information",
	PlanUnplannedSite: "Access site left unplanned",
	PlanTimings:       "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("INP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("INF%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("GEN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
