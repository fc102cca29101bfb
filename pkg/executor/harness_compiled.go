package executor

import (
	"fmt"
	"strings"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

// rustHarness appends a generated fn main to the user's snake_case functions.
func rustHarness(userCode string, tc problems.TestCase, problemID string) string {
	input := tc.Input
	mainCode := "fn main() {}"

	switch problemID {
	case "two-sum":
		parts := strings.Fields(input)
		if len(parts) >= 2 {
			mainCode = fmt.Sprintf(
				"fn main() {\n    let nums = vec!%s;\n    let result = two_sum(nums, %s);\n    println!(\"[{},{}]\", result[0], result[1]);\n}",
				parts[0], parts[1])
		}
	case "reverse-string":
		mainCode = fmt.Sprintf(
			"fn main() {\n    let mut s: Vec<char> = vec![%s];\n    reverse_string(&mut s);\n    print!(\"[\");\n    for (i, c) in s.iter().enumerate() {\n        print!(\"\\\"{}\\\"\", c);\n        if i < s.len() - 1 { print!(\",\"); }\n    }\n    println!(\"]\");\n}",
			charLiterals(input))
	case "valid-parentheses":
		mainCode = fmt.Sprintf(
			"fn main() { println!(\"{}\", if is_valid(\"%s\".to_string()) { \"true\" } else { \"false\" }); }",
			input)
	case "fizzbuzz":
		mainCode = fmt.Sprintf(
			"fn main() {\n    let result = fizz_buzz(%s);\n    print!(\"[\");\n    for (i, s) in result.iter().enumerate() {\n        print!(\"\\\"{}\\\"\", s);\n        if i < result.len() - 1 { print!(\",\"); }\n    }\n    println!(\"]\");\n}",
			input)
	case "palindrome-number":
		mainCode = fmt.Sprintf(
			"fn main() { println!(\"{}\", if is_palindrome(%s) { \"true\" } else { \"false\" }); }",
			input)
	case "maximum-subarray":
		mainCode = fmt.Sprintf(
			"fn main() { let nums = vec!%s; println!(\"{}\", max_sub_array(nums)); }", input)
	case "merge-intervals":
		mainCode = fmt.Sprintf(
			"fn main() {\n    let intervals: Vec<Vec<i32>> = vec!%s;\n    let result = merge(intervals);\n    print!(\"[\");\n    for (i, interval) in result.iter().enumerate() {\n        print!(\"[{},{}]\", interval[0], interval[1]);\n        if i < result.len() - 1 { print!(\",\"); }\n    }\n    println!(\"]\");\n}",
			input)
	case "group-anagrams":
		mainCode = fmt.Sprintf(
			"fn main() {\n    let strs: Vec<String> = vec!%s.iter().map(|s: &&str| s.to_string()).collect();\n    let result = group_anagrams(strs);\n    print!(\"[\");\n    for (i, group) in result.iter().enumerate() {\n        print!(\"[\");\n        for (j, s) in group.iter().enumerate() {\n            print!(\"\\\"{}\\\"\", s);\n            if j < group.len() - 1 { print!(\",\"); }\n        }\n        print!(\"]\");\n        if i < result.len() - 1 { print!(\",\"); }\n    }\n    println!(\"]\");\n}",
			input)
	case "longest-substring":
		mainCode = fmt.Sprintf(
			"fn main() { println!(\"{}\", length_of_longest_substring(\"%s\".to_string())); }", input)
	case "trapping-rain-water":
		mainCode = fmt.Sprintf(
			"fn main() { let height = vec!%s; println!(\"{}\", trap(height)); }", input)
	case "merge-k-sorted-lists":
		mainCode = fmt.Sprintf(
			"fn main() {\n    let lists: Vec<Vec<i32>> = vec!%s;\n    let result = merge_k_lists(lists);\n    print!(\"[\");\n    for (i, n) in result.iter().enumerate() {\n        print!(\"{}\", n);\n        if i < result.len() - 1 { print!(\",\"); }\n    }\n    println!(\"]\");\n}",
			input)
	case "median-two-sorted-arrays":
		parts := strings.Fields(input)
		if len(parts) >= 2 {
			mainCode = fmt.Sprintf(
				"fn main() { let nums1 = vec!%s; let nums2 = vec!%s; println!(\"{:.1}\", find_median_sorted_arrays(nums1, nums2)); }",
				parts[0], parts[1])
		}
	}
	return userCode + "\n\n" + mainCode
}

// goHarness wraps the user's camelCase functions into package main.
func goHarness(userCode string, tc problems.TestCase, problemID string) string {
	input := tc.Input
	imports := `"fmt"`
	mainCode := "func main() {}"

	switch problemID {
	case "two-sum":
		parts := strings.Fields(input)
		if len(parts) >= 2 {
			mainCode = fmt.Sprintf(
				"func main() {\n    nums := %s\n    result := twoSum(nums, %s)\n    fmt.Printf(\"[%%d,%%d]\", result[0], result[1])\n}",
				goIntArray(parts[0]), parts[1])
		}
	case "reverse-string":
		mainCode = fmt.Sprintf(
			"func main() {\n    s := []byte{%s}\n    reverseString(s)\n    fmt.Print(\"[\")\n    for i, c := range s {\n        fmt.Printf(\"\\\"%%c\\\"\", c)\n        if i < len(s)-1 { fmt.Print(\",\") }\n    }\n    fmt.Print(\"]\")\n}",
			charLiterals(input))
	case "valid-parentheses":
		mainCode = fmt.Sprintf(
			"func main() { if isValid(%q) { fmt.Print(\"true\") } else { fmt.Print(\"false\") } }", input)
	case "fizzbuzz":
		mainCode = fmt.Sprintf(
			"func main() {\n    result := fizzBuzz(%s)\n    fmt.Print(\"[\")\n    for i, s := range result {\n        fmt.Printf(\"\\\"%%s\\\"\", s)\n        if i < len(result)-1 { fmt.Print(\",\") }\n    }\n    fmt.Print(\"]\")\n}",
			input)
	case "palindrome-number":
		mainCode = fmt.Sprintf(
			"func main() { if isPalindrome(%s) { fmt.Print(\"true\") } else { fmt.Print(\"false\") } }", input)
	case "maximum-subarray":
		mainCode = fmt.Sprintf("func main() { nums := %s; fmt.Print(maxSubArray(nums)) }", goIntArray(input))
	case "merge-intervals":
		mainCode = fmt.Sprintf(
			"func main() {\n    intervals := %s\n    result := merge(intervals)\n    fmt.Print(\"[\")\n    for i, interval := range result {\n        fmt.Printf(\"[%%d,%%d]\", interval[0], interval[1])\n        if i < len(result)-1 { fmt.Print(\",\") }\n    }\n    fmt.Print(\"]\")\n}",
			goIntMatrix(input))
	case "group-anagrams":
		imports = "\"fmt\"\n    \"strings\""
		mainCode = fmt.Sprintf(
			"func main() {\n    strs := []string{%s}\n    result := groupAnagrams(strs)\n    fmt.Print(\"[\")\n    for i, group := range result {\n        fmt.Print(\"[\")\n        for j, s := range group {\n            fmt.Printf(\"\\\"%%s\\\"\", s)\n            if j < len(group)-1 { fmt.Print(\",\") }\n        }\n        fmt.Print(\"]\")\n        if i < len(result)-1 { fmt.Print(\",\") }\n    }\n    fmt.Print(\"]\")\n    _ = strings.Join(nil, \"\") // use strings\n}",
			trimBrackets(input))
	case "longest-substring":
		mainCode = fmt.Sprintf("func main() { fmt.Print(lengthOfLongestSubstring(%q)) }", input)
	case "trapping-rain-water":
		mainCode = fmt.Sprintf("func main() { height := %s; fmt.Print(trap(height)) }", goIntArray(input))
	case "merge-k-sorted-lists":
		mainCode = fmt.Sprintf(
			"func main() {\n    lists := %s\n    result := mergeKLists(lists)\n    fmt.Print(\"[\")\n    for i, n := range result {\n        fmt.Print(n)\n        if i < len(result)-1 { fmt.Print(\",\") }\n    }\n    fmt.Print(\"]\")\n}",
			goIntMatrix(input))
	case "median-two-sorted-arrays":
		parts := strings.Fields(input)
		if len(parts) >= 2 {
			mainCode = fmt.Sprintf(
				"func main() { nums1 := %s; nums2 := %s; fmt.Printf(\"%%.1f\", findMedianSortedArrays(nums1, nums2)) }",
				goIntArray(parts[0]), goIntArray(parts[1]))
		}
	}
	return fmt.Sprintf("package main\n\nimport (\n    %s\n)\n\n%s\n\n%s", imports, userCode, mainCode)
}
