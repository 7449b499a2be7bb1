// Package model describes the base objects manipulated by the converter.
//
// The object model is composed of:
//
//	Revisions:
//	  A revision is a bag in the output directory, derived from the previous revision.
//	  A revision lives at <output>/<group>/<id>: the group of a revision is the token
//	  other revisions refer to, with an Is-Version-Of: urn:uuid:<group> line in their bag-info.txt.
//
//	Chains:
//	  A chain is the sequence of revisions produced by one conversion. The first revision
//	  keeps the group and name of the input bag. The next ones get fresh identifiers.
package model
