package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	qaerrors "github.com/standardbeagle/codeqa/internal/errors"
)

// The grammar accepts some constructs the Python compiler rejects.
// findInvalidConstruct reports the first of them in pre-order.
func findInvalidConstruct(node *tree_sitter.Node, content []byte) *qaerrors.SyntaxError {
	if node == nil {
		return nil
	}

	switch node.Kind() {
	case "delete_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if serr := checkDeleteTarget(node.NamedChild(i), content); serr != nil {
				return serr
			}
		}
	case "parameters", "lambda_parameters":
		if serr := checkParameterOrder(node, content); serr != nil {
			return serr
		}
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		if serr := findInvalidConstruct(node.NamedChild(i), content); serr != nil {
			return serr
		}
	}
	return nil
}

// checkDeleteTarget accepts names, attributes, subscripts and sequences of them
func checkDeleteTarget(node *tree_sitter.Node, content []byte) *qaerrors.SyntaxError {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "identifier", "attribute", "subscript", "comment":
		return nil
	case "expression_list", "tuple", "list", "parenthesized_expression":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if serr := checkDeleteTarget(node.NamedChild(i), content); serr != nil {
				return serr
			}
		}
		return nil
	case "call":
		return newSyntaxError("cannot delete function call", node, content)
	case "integer", "float", "string", "concatenated_string", "true", "false", "none", "ellipsis":
		return newSyntaxError("cannot delete literal", node, content)
	}
	return newSyntaxError("cannot delete expression", node, content)
}

// checkParameterOrder rejects a positional parameter without a default after one
// with a default. Parameters after * or *args are keyword-only and exempt.
func checkParameterOrder(node *tree_sitter.Node, content []byte) *qaerrors.SyntaxError {
	sawDefault := false
	for i := uint(0); i < node.NamedChildCount(); i++ {
		param := node.NamedChild(i)
		switch param.Kind() {
		case "default_parameter", "typed_default_parameter":
			sawDefault = true
		case "identifier":
			if sawDefault {
				return newSyntaxError("non-default argument follows default argument", param, content)
			}
		case "typed_parameter":
			if first := param.NamedChild(0); first != nil && first.Kind() != "identifier" {
				// *args: T or **kwargs: T
				return nil
			}
			if sawDefault {
				return newSyntaxError("non-default argument follows default argument", param, content)
			}
		case "list_splat_pattern", "keyword_separator", "dictionary_splat_pattern":
			return nil
		}
	}
	return nil
}
