// Command speclint validates spec descriptors against xcodebuild.
package main

func main() {
	Execute()
}
