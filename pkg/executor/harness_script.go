package executor

import (
	"fmt"
	"strings"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

// jsHarness appends a call line that prints the solution's output in the
// canonical JSON form.
func jsHarness(userCode string, tc problems.TestCase, problemID string) string {
	var call string
	switch problemID {
	case "two-sum":
		parts := strings.Fields(tc.Input)
		if len(parts) >= 2 {
			call = fmt.Sprintf("console.log(JSON.stringify(twoSum(%s, %s)));", parts[0], parts[1])
		} else {
			call = "console.log('Invalid input');"
		}
	case "reverse-string":
		call = fmt.Sprintf("let s = %s; reverseString(s); console.log(JSON.stringify(s));", tc.Input)
	case "valid-parentheses":
		call = fmt.Sprintf("console.log(isValid(%q));", tc.Input)
	case "fizzbuzz":
		call = fmt.Sprintf("console.log(JSON.stringify(fizzBuzz(%s)));", tc.Input)
	case "palindrome-number":
		call = fmt.Sprintf("console.log(isPalindrome(%s));", tc.Input)
	case "maximum-subarray":
		call = fmt.Sprintf("console.log(maxSubArray(%s));", tc.Input)
	case "merge-intervals":
		call = fmt.Sprintf("console.log(JSON.stringify(merge(%s)));", tc.Input)
	case "group-anagrams":
		call = fmt.Sprintf("console.log(JSON.stringify(groupAnagrams(%s)));", tc.Input)
	case "longest-substring":
		call = fmt.Sprintf("console.log(lengthOfLongestSubstring(%q));", tc.Input)
	case "trapping-rain-water":
		call = fmt.Sprintf("console.log(trap(%s));", tc.Input)
	case "merge-k-sorted-lists":
		call = fmt.Sprintf("console.log(JSON.stringify(mergeKLists(%s)));", tc.Input)
	case "median-two-sorted-arrays":
		parts := strings.Fields(tc.Input)
		if len(parts) >= 2 {
			call = fmt.Sprintf("console.log(findMedianSortedArrays(%s, %s).toFixed(1));", parts[0], parts[1])
		} else {
			call = "console.log('Invalid input');"
		}
	}
	return userCode + "\n\n" + call
}

// pyHarness mirrors jsHarness; booleans are lowercased to match the JSON
// expected outputs.
func pyHarness(userCode string, tc problems.TestCase, problemID string) string {
	var call string
	switch problemID {
	case "two-sum":
		parts := strings.Fields(tc.Input)
		if len(parts) >= 2 {
			call = fmt.Sprintf("import json; print(json.dumps(twoSum(%s, %s)))", parts[0], parts[1])
		} else {
			call = "print('Invalid input')"
		}
	case "reverse-string":
		call = fmt.Sprintf("import json; s = %s; reverseString(s); print(json.dumps(s))", tc.Input)
	case "valid-parentheses":
		call = fmt.Sprintf("print(str(isValid(%q)).lower())", tc.Input)
	case "fizzbuzz":
		call = fmt.Sprintf("import json; print(json.dumps(fizzBuzz(%s)))", tc.Input)
	case "palindrome-number":
		call = fmt.Sprintf("print(str(isPalindrome(%s)).lower())", tc.Input)
	case "maximum-subarray":
		call = fmt.Sprintf("print(maxSubArray(%s))", tc.Input)
	case "merge-intervals":
		call = fmt.Sprintf("import json; print(json.dumps(merge(%s)))", tc.Input)
	case "group-anagrams":
		call = fmt.Sprintf("import json; print(json.dumps(groupAnagrams(%s)))", tc.Input)
	case "longest-substring":
		call = fmt.Sprintf("print(lengthOfLongestSubstring(%q))", tc.Input)
	case "trapping-rain-water":
		call = fmt.Sprintf("print(trap(%s))", tc.Input)
	case "merge-k-sorted-lists":
		call = fmt.Sprintf("import json; print(json.dumps(mergeKLists(%s)))", tc.Input)
	case "median-two-sorted-arrays":
		parts := strings.Fields(tc.Input)
		if len(parts) >= 2 {
			call = fmt.Sprintf("print(f\"{findMedianSortedArrays(%s, %s):.1f}\")", parts[0], parts[1])
		} else {
			call = "print('Invalid input')"
		}
	}
	return userCode + "\n\n" + call
}
