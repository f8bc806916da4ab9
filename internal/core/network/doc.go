// Package network is the state engine of the elicitation.
//
// A Store holds one respondent's nodes, links and layout foci together with
// the scalar progress of the stages (counter, correction, link source). The
// presentation layer drives it through a small set of operations and reads
// back stage projections; it never holds references into the store.
//
// # Stages
//
// Naming creates alters (at most 25). The cycling, numeric and categorical
// stages walk through the alters one at a time; the next prompted index is
// derived from how many alters already carry the attribute, unless a one-shot
// correction points somewhere else. The two continuous stages record where the
// respondent dropped each alter. The linking stage toggles ties between pairs
// of alters with a two-click selection.
//
// # Layout
//
// Recalculate decides for every node whether it is anchored (at its focus, or
// at a packed grid slot on narrow screens) or floating (linked alters on the
// linking stage, positioned by the renderer's own simulation). It is a pure
// function of its inputs.
//
// # Errors
//
// Rejections (empty name, too many alters, nothing left to answer) are
// reported with messages meant for the respondent. Everything else is a
// contract violation of the caller; WithStrict turns those into panics.
package network
