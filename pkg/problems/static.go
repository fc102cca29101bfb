package problems

func strptr(s string) *string { return &s }

func intptr(i int) *int { return &i }

// defaultProblems is the compiled-in catalog. Hidden test-case inputs use the
// whitespace-separated literal form the execution harnesses parse.
func defaultProblems() []*Problem {
	return []*Problem{
		{
			ID:    "two-sum",
			Title: "Two Sum",
			Description: `Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target.

You may assume that each input would have exactly one solution, and you may not use the same element twice.

You can return the answer in any order.`,
			Difficulty: Easy,
			Examples: []TestCase{
				{Input: "nums = [2,7,11,15], target = 9", ExpectedOutput: "[0,1]", Explanation: strptr("Because nums[0] + nums[1] == 9, we return [0, 1].")},
				{Input: "nums = [3,2,4], target = 6", ExpectedOutput: "[1,2]"},
			},
			TestCases: []TestCase{
				{Input: "[2,7,11,15] 9", ExpectedOutput: "[0,1]"},
				{Input: "[3,2,4] 6", ExpectedOutput: "[1,2]"},
				{Input: "[3,3] 6", ExpectedOutput: "[0,1]"},
			},
			StarterCode: map[string]string{
				"javascript": `/**
 * @param {number[]} nums
 * @param {number} target
 * @return {number[]}
 */
function twoSum(nums, target) {
    // Your solution here

}

// Test your solution
console.log(twoSum([2,7,11,15], 9)); // Should return [0,1]`,
				"python": `def two_sum(nums, target):
    """
    :type nums: List[int]
    :type target: int
    :rtype: List[int]
    """
    # Your solution here
    pass

# Test your solution
print(two_sum([2,7,11,15], 9))  # Should return [0,1]`,
				"java": `class Solution {
    public int[] twoSum(int[] nums, int target) {
        // Your solution here
        return new int[]{};
    }

    public static void main(String[] args) {
        Solution solution = new Solution();
        int[] result = solution.twoSum(new int[]{2,7,11,15}, 9);
        System.out.println(java.util.Arrays.toString(result)); // Should return [0,1]
    }
}`,
			},
			TimeLimitMinutes: intptr(15),
			Tags:             []string{"array", "hash-table"},
		},
		{
			ID:    "reverse-string",
			Title: "Reverse String",
			Description: `Write a function that reverses a string. The input string is given as an array of characters s.

You must do this by modifying the input array in-place with O(1) extra memory.`,
			Difficulty: Easy,
			Examples: []TestCase{
				{Input: `s = ["h","e","l","l","o"]`, ExpectedOutput: `["o","l","l","e","h"]`},
				{Input: `s = ["H","a","n","n","a","h"]`, ExpectedOutput: `["h","a","n","n","a","H"]`},
			},
			TestCases: []TestCase{
				{Input: `["h","e","l","l","o"]`, ExpectedOutput: `["o","l","l","e","h"]`},
				{Input: `["H","a","n","n","a","h"]`, ExpectedOutput: `["h","a","n","n","a","H"]`},
			},
			StarterCode: map[string]string{
				"javascript": `/**
 * @param {character[]} s
 * @return {void} Do not return anything, modify s in-place instead.
 */
function reverseString(s) {
    // Your solution here

}

// Test your solution
let test = ["h","e","l","l","o"];
reverseString(test);
console.log(test); // Should be ["o","l","l","e","h"]`,
				"python": `def reverse_string(s):
    """
    :type s: List[str]
    :rtype: None Do not return anything, modify s in-place instead.
    """
    # Your solution here
    pass

# Test your solution
test = ["h","e","l","l","o"]
reverse_string(test)
print(test)  # Should be ["o","l","l","e","h"]`,
				"java": `class Solution {
    public void reverseString(char[] s) {
        // Your solution here

    }

    public static void main(String[] args) {
        Solution solution = new Solution();
        char[] test = {'h','e','l','l','o'};
        solution.reverseString(test);
        System.out.println(java.util.Arrays.toString(test)); // Should be [o,l,l,e,h]
    }
}`,
			},
			TimeLimitMinutes: intptr(10),
			Tags:             []string{"two-pointers", "string"},
		},
		{
			ID:    "valid-parentheses",
			Title: "Valid Parentheses",
			Description: `Given a string s containing just the characters '(', ')', '{', '}', '[' and ']', determine if the input string is valid.

An input string is valid if:
1. Open brackets must be closed by the same type of brackets.
2. Open brackets must be closed in the correct order.
3. Every close bracket has a corresponding open bracket of the same type.`,
			Difficulty: Easy,
			Examples: []TestCase{
				{Input: `s = "()"`, ExpectedOutput: "true"},
				{Input: `s = "()[]{}"`, ExpectedOutput: "true"},
				{Input: `s = "(]"`, ExpectedOutput: "false"},
			},
			TestCases: []TestCase{
				{Input: "()", ExpectedOutput: "true"},
				{Input: "()[()]", ExpectedOutput: "true"},
				{Input: "([)]", ExpectedOutput: "false"},
			},
			StarterCode: map[string]string{
				"javascript": `/**
 * @param {string} s
 * @return {boolean}
 */
function isValid(s) {
    // Your solution here

}

// Test your solution
console.log(isValid("()")); // Should return true
console.log(isValid("([)]")); // Should return false`,
				"python": `def is_valid(s):
    """
    :type s: str
    :rtype: bool
    """
    # Your solution here
    pass

# Test your solution
print(is_valid("()"))  # Should return True
print(is_valid("([)]"))  # Should return False`,
				"java": `class Solution {
    public boolean isValid(String s) {
        // Your solution here
        return false;
    }

    public static void main(String[] args) {
        Solution solution = new Solution();
        System.out.println(solution.isValid("()")); // Should return true
        System.out.println(solution.isValid("([)]")); // Should return false
    }
}`,
			},
			TimeLimitMinutes: intptr(20),
			Tags:             []string{"stack", "string"},
		},
	}
}
