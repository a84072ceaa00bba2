package arena

import "fmt"

const improveInstruction = "Can you provide an improved solution that addresses any limitations in both approaches?"

// RebuttalPrompt is what a player receives from round two on: its own last
// answer, the opponent's last answer, and the request to improve on both.
func RebuttalPrompt(own, opponent string) string {
	return fmt.Sprintf("Here's your previous solution: %s\nYour opponent's solution: %s\n%s",
		own, opponent, improveInstruction)
}

// JudgePrompt asks the judge to pick a round winner. The verdict is shown to
// the user as-is and never parsed.
func JudgePrompt(problem, playerOne, answerOne, playerTwo, answerTwo string) string {
	return fmt.Sprintf("As a judge, evaluate the following solutions to this problem: %s. "+
		"%s's solution: %s. "+
		"%s's solution: %s. "+
		"Choose the winner based on code quality, efficiency, and correctness. "+
		"Begin your response with '{winner_name} is the winner of this round!' "+
		"followed by a detailed explanation of your decision.",
		problem, playerOne, answerOne, playerTwo, answerTwo)
}

// playerPrompts returns the prompts for round number given the previous round.
func playerPrompts(problem string, number int, prev *Round) (string, string) {
	if number <= 1 || prev == nil {
		return problem, problem
	}
	return RebuttalPrompt(prev.PlayerOne, prev.PlayerTwo),
		RebuttalPrompt(prev.PlayerTwo, prev.PlayerOne)
}
