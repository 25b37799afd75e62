// Command heapctl replays allocation traces and stress-tests the heapkit
// allocator.
package main

func main() {
	execute()
}
