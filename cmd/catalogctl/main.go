// Command catalogctl drives end-to-end scenarios against a metadata catalog
// and serves a stub catalog for local runs.
package main

func main() {
	Execute()
}
