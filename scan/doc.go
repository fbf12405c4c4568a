/*
Package scan provides the byte-level machinery shared by the Newick and NEXUS
readers in this module.

A Source is a cursor over raw bytes. Two sources are provided: MemorySource
holds the entire input in a single buffer, while BufferedSource streams from a
seekable file through a small bufio window. Both support rewinding to an
absolute byte offset, which the NEXUS reader relies on when it makes more than
one pass over a TREES block.

A Parser wraps a Source and adds the operations a hand written recursive
descent reader needs: whitespace and [comment] skipping, case insensitive
literal matching, scanning up to a terminator and label extraction (quoted or
unquoted).

Every failure is reported as an *Error, which records the kind of failure, the
byte offset at which it was detected and a short snippet of the bytes that
follow.
*/
package scan
