// Package fuzztests houses Go fuzz harnesses for the line rewriting passes.
// Arbitrary bytes go through source splitting and each pass; the harnesses
// check the properties every pass must keep rather than exact output.
//
// Назначение: ловить паники и нарушения инвариантов на произвольном вводе.
//
// Не делает: запись файлов, запуск CLI.
package fuzztests
