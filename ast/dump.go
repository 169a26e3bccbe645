package ast

// DumpNode mirrors Node as a tree of plain values suitable for
// encoding/json, recovering the feature the `json-ast` CLI output format
// names but the node-ID/arena representation cannot marshal directly
// (NodeID indices are meaningless outside the Arena that produced them).
type DumpNode struct {
	Kind string `json:"kind"`
	Type string `json:"type,omitempty"`

	Value interface{} `json:"value,omitempty"`
	Name  string      `json:"name,omitempty"`
	Op    string      `json:"op,omitempty"`

	Lhs  *DumpNode `json:"lhs,omitempty"`
	Rhs  *DumpNode `json:"rhs,omitempty"`
	Then *DumpNode `json:"then,omitempty"`
	Else *DumpNode `json:"else,omitempty"`

	ForInit *DumpNode `json:"for_init,omitempty"`
	ForStep *DumpNode `json:"for_step,omitempty"`

	Children []*DumpNode `json:"children,omitempty"`

	TargetClass   string `json:"target_class,omitempty"`
	MethodName    string `json:"method_name,omitempty"`
	IsStatic      bool   `json:"is_static,omitempty"`
	IsConstructor bool   `json:"is_constructor,omitempty"`

	FieldClass string `json:"field_class,omitempty"`
	Slot       int    `json:"slot,omitempty"`
	UseCount   int    `json:"use_count,omitempty"`

	Modifiers  []string    `json:"modifiers,omitempty"`
	Params     []DumpParam `json:"params,omitempty"`
	TargetType string      `json:"target_type,omitempty"`

	CaseValues []int32  `json:"case_values,omitempty"`
	CatchTypes []string `json:"catch_types,omitempty"`
	CatchSlot  int      `json:"catch_slot,omitempty"`
	CatchBody  *DumpNode `json:"catch_body,omitempty"`
	Finally    *DumpNode `json:"finally,omitempty"`
}

// DumpParam mirrors Param as a plain value for encoding/json.
type DumpParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Dump converts the subtree rooted at id into a self-contained DumpNode
// tree. Returns nil for NoNode.
func (a *Arena) Dump(id NodeID) *DumpNode {
	if id == NoNode {
		return nil
	}
	n := a.Get(id)
	d := &DumpNode{
		Kind:          n.Kind.String(),
		Type:          n.Type.String(),
		Value:         n.LiteralValue,
		Name:          n.Name,
		Op:            n.Op,
		Lhs:           a.Dump(n.Lhs),
		Rhs:           a.Dump(n.Rhs),
		Then:          a.Dump(n.Then),
		Else:          a.Dump(n.Else),
		ForInit:       a.Dump(n.ForInit),
		ForStep:       a.Dump(n.ForStep),
		TargetClass:   n.TargetClass,
		MethodName:    n.MethodName,
		IsStatic:      n.IsStatic,
		IsConstructor: n.IsConstructor,
		FieldClass:    n.FieldClass,
		Slot:          n.Slot,
		UseCount:      n.UseCount,
		Modifiers:     n.Modifiers,
		Params:        dumpParams(n.Params),
		CaseValues:    n.CaseValues,
		CatchTypes:    n.CatchTypes,
		CatchSlot:     n.CatchSlot,
		CatchBody:     a.Dump(n.CatchBody),
		Finally:       a.Dump(n.Finally),
	}
	if n.TargetType.Kind != TypeUnknown {
		d.TargetType = n.TargetType.String()
	}
	for _, c := range n.Children {
		d.Children = append(d.Children, a.Dump(c))
	}
	return d
}

func dumpParams(params []Param) []DumpParam {
	if len(params) == 0 {
		return nil
	}
	out := make([]DumpParam, len(params))
	for i, p := range params {
		out[i] = DumpParam{Name: p.Name, Type: p.Type.String()}
	}
	return out
}
