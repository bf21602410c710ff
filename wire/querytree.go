package wire

import (
	"fmt"
	"strings"

	"github.com/oef-ai/oef-agent-go/query"
)

// Branch field numbers.
const (
	branchFieldCombiner = 1
	branchFieldName     = 2
	branchFieldLeaves   = 3
	branchFieldSubnodes = 4
)

// Leaf field numbers.
const (
	leafFieldName            = 1
	leafFieldOperator        = 2
	leafFieldQueryFieldType  = 3
	leafFieldTargetFieldName = 4
	leafFieldTargetFieldType = 5
	leafFieldTargetTableName = 6
	leafFieldScalarValue     = 7
	leafFieldListValue       = 8
	leafFieldRangeLow        = 9
	leafFieldRangeHigh       = 10
	leafFieldDapName         = 11
	leafFieldDapFieldCand    = 12
)

// DapFieldCandidate field numbers.
const (
	dapFieldCandName            = 1
	dapFieldCandTargetFieldType = 2
	dapFieldCandTargetTableName = 3
)

// EncodeBranch serializes a query tree's root (or any internal node) into
// the wire Branch form used by SearchAgents/SearchServices/SearchServicesWide.
func EncodeBranch(b *query.Branch) ([]byte, error) {
	var out []byte
	out = appendString(out, branchFieldCombiner, string(b.Combiner))
	if b.Name != "" {
		out = appendString(out, branchFieldName, b.Name)
	}
	for _, l := range b.Leaves {
		leafBytes, err := EncodeLeaf(l)
		if err != nil {
			return nil, err
		}
		out = appendMessage(out, branchFieldLeaves, leafBytes)
	}
	for _, s := range b.Subnodes {
		subBytes, err := EncodeBranch(s)
		if err != nil {
			return nil, err
		}
		out = appendMessage(out, branchFieldSubnodes, subBytes)
	}
	return out, nil
}

// DecodeBranch parses a wire Branch back into the query package's tree form.
func DecodeBranch(data []byte) (*query.Branch, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	b := &query.Branch{}
	for _, f := range fields {
		switch f.Num {
		case branchFieldCombiner:
			s, err := fieldString(f)
			if err != nil {
				return nil, err
			}
			b.Combiner = query.Combiner(s)
		case branchFieldName:
			b.Name, err = fieldString(f)
		case branchFieldLeaves:
			raw, err2 := fieldBytes(f)
			if err2 != nil {
				return nil, err2
			}
			leaf, err2 := DecodeLeaf(raw)
			if err2 != nil {
				return nil, err2
			}
			b.Leaves = append(b.Leaves, leaf)
		case branchFieldSubnodes:
			raw, err2 := fieldBytes(f)
			if err2 != nil {
				return nil, err2
			}
			sub, err2 := DecodeBranch(raw)
			if err2 != nil {
				return nil, err2
			}
			b.Subnodes = append(b.Subnodes, sub)
		}
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// EncodeLeaf serializes a single constraint leaf.
func EncodeLeaf(l *query.Leaf) ([]byte, error) {
	var out []byte
	if l.Name != "" {
		out = appendString(out, leafFieldName, l.Name)
	}
	out = appendString(out, leafFieldOperator, string(l.Operator))
	out = appendString(out, leafFieldQueryFieldType, l.QueryFieldType)
	out = appendString(out, leafFieldTargetFieldName, l.TargetFieldName)
	if l.TargetFieldType != "" {
		out = appendString(out, leafFieldTargetFieldType, l.TargetFieldType)
	}
	if l.TargetTableName != "" {
		out = appendString(out, leafFieldTargetTableName, l.TargetTableName)
	}

	switch {
	case strings.HasSuffix(l.QueryFieldType, "_range"):
		pair, ok := l.QueryFieldValue.([2]interface{})
		if !ok {
			return nil, fmt.Errorf("wire: range leaf %q has non-pair value", l.TargetFieldName)
		}
		low, err := EncodeValue(pair[0])
		if err != nil {
			return nil, err
		}
		high, err := EncodeValue(pair[1])
		if err != nil {
			return nil, err
		}
		out = appendMessage(out, leafFieldRangeLow, low)
		out = appendMessage(out, leafFieldRangeHigh, high)
	case strings.HasSuffix(l.QueryFieldType, "_list"):
		values, ok := l.QueryFieldValue.([]interface{})
		if !ok {
			return nil, fmt.Errorf("wire: list leaf %q has non-list value", l.TargetFieldName)
		}
		for _, v := range values {
			enc, err := EncodeValue(v)
			if err != nil {
				return nil, err
			}
			out = appendMessage(out, leafFieldListValue, enc)
		}
	default:
		enc, err := EncodeValue(l.QueryFieldValue)
		if err != nil {
			return nil, err
		}
		out = appendMessage(out, leafFieldScalarValue, enc)
	}

	for name := range l.DapNames {
		out = appendString(out, leafFieldDapName, name)
	}
	for name, c := range l.DapFieldCandidates {
		var cb []byte
		cb = appendString(cb, dapFieldCandName, name)
		cb = appendString(cb, dapFieldCandTargetFieldType, c.TargetFieldType)
		cb = appendString(cb, dapFieldCandTargetTableName, c.TargetTableName)
		out = appendMessage(out, leafFieldDapFieldCand, cb)
	}
	return out, nil
}

// DecodeLeaf parses a single wire constraint leaf.
func DecodeLeaf(data []byte) (*query.Leaf, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	l := &query.Leaf{}
	var low, high interface{}
	var list []interface{}
	haveLow, haveHigh := false, false
	for _, f := range fields {
		switch f.Num {
		case leafFieldName:
			l.Name, err = fieldString(f)
		case leafFieldOperator:
			var s string
			s, err = fieldString(f)
			l.Operator = query.Operator(s)
		case leafFieldQueryFieldType:
			l.QueryFieldType, err = fieldString(f)
		case leafFieldTargetFieldName:
			l.TargetFieldName, err = fieldString(f)
		case leafFieldTargetFieldType:
			l.TargetFieldType, err = fieldString(f)
		case leafFieldTargetTableName:
			l.TargetTableName, err = fieldString(f)
		case leafFieldScalarValue:
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				l.QueryFieldValue, err = DecodeValue(raw)
			}
		case leafFieldListValue:
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				var v interface{}
				v, err = DecodeValue(raw)
				list = append(list, v)
			}
		case leafFieldRangeLow:
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				low, err = DecodeValue(raw)
				haveLow = true
			}
		case leafFieldRangeHigh:
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				high, err = DecodeValue(raw)
				haveHigh = true
			}
		case leafFieldDapName:
			var name string
			name, err = fieldString(f)
			if l.DapNames == nil {
				l.DapNames = map[string]struct{}{}
			}
			l.DapNames[name] = struct{}{}
		case leafFieldDapFieldCand:
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				var name string
				var cand query.DapFieldCandidate
				name, cand, err = decodeDapFieldCandidate(raw)
				if l.DapFieldCandidates == nil {
					l.DapFieldCandidates = map[string]query.DapFieldCandidate{}
				}
				l.DapFieldCandidates[name] = cand
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if haveLow && haveHigh {
		l.QueryFieldValue = [2]interface{}{low, high}
	} else if list != nil {
		l.QueryFieldValue = list
	}
	return l, nil
}

func decodeDapFieldCandidate(data []byte) (string, query.DapFieldCandidate, error) {
	fields, err := parseFields(data)
	if err != nil {
		return "", query.DapFieldCandidate{}, err
	}
	var name string
	var cand query.DapFieldCandidate
	for _, f := range fields {
		switch f.Num {
		case dapFieldCandName:
			name, err = fieldString(f)
		case dapFieldCandTargetFieldType:
			cand.TargetFieldType, err = fieldString(f)
		case dapFieldCandTargetTableName:
			cand.TargetTableName, err = fieldString(f)
		}
		if err != nil {
			return "", query.DapFieldCandidate{}, err
		}
	}
	return name, cand, nil
}
