// Package schemagen runs the bundled Python schema generator for each
// installed API package.
package schemagen
