// Package results materialises backend output on disk and formats tool results.
//
// Files are saved as result_<group>_<item>_<basename> inside the task's
// output directory. Names depend only on positions within one response, so
// two concurrent calls of the same tool may overwrite each other's files.
package results
