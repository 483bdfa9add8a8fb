// Package mdast defines the document tree produced by the parsing engine.
//
// A tree is a Document node whose children are block nodes (paragraphs,
// headings, lists, tables, code blocks, containers, raw markup blocks) and
// whose leaves are inline nodes (text, emphasis, links, images, code spans).
// Nodes own their children; nothing links back to a parent. Once the grammar
// engine hands out a tree it is never mutated, so a single tree may be cached
// and shared by any number of readers.
package mdast
