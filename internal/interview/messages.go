package interview

import "github.com/spigell/interview-coach/internal/scoring"

var (
	welcomeMessages = []string{
		"Welcome to the interview coach! Let's practice your technical skills.",
		"Hello! Ready for a technical interview? I'm here to help.",
		"Hi! Let's sharpen your interview skills with tailored questions.",
	}

	resumePrompts = []string{
		"Upload your resume or paste its content to start.",
		"Share your resume to tailor the interview questions.",
		"I need your resume to generate relevant questions.",
	}

	skillMessages = []string{
		"Great! Here are the skills I found in your resume:",
		"Thanks! I've identified these skills from your resume:",
		"Based on your resume, here are your key skills:",
	}

	interviewStartMessages = []string{
		"Let's start with questions based on your skills!",
		"Ready? Here come some technical questions!",
		"The interview begins with tailored questions.",
	}

	questionTransitions = []string{
		"Next question:",
		"Here's another one:",
		"Moving on:",
	}

	evaluationMessages = map[scoring.Band][]string{
		scoring.BandStrong: {
			"Great answer! You hit the key points.",
			"Excellent! Your response was clear and accurate.",
			"Well done! That was a strong answer.",
		},
		scoring.BandPartial: {
			"Good try! You covered some points, but there's room to grow.",
			"Decent answer, but you could add more detail.",
			"Not bad! Try expanding on the concepts.",
		},
		scoring.BandWeak: {
			"You missed some key concepts. Let's review those.",
			"Needs more depth. Want some pointers?",
			"Try including more technical details.",
		},
	}
)

const (
	namePrompt          = "Hi %s! Please upload or paste your resume."
	noSkillsPrompt      = "No technical skills found. List some skills (e.g., Python, Java, AWS)."
	confirmSkillsPrompt = "Are these correct? Add more skills or type 'start interview'."
	manualSkillsPrompt  = "Type 'start interview' to begin."
	skillsUpdated       = "Skills updated. Type 'start interview' to begin."
	awaitingStart       = "Type 'start interview' when ready."
	emptyDocument       = "I couldn't read any text from that document. Try another file or paste your resume."
	documentNotExpected = "A resume is already loaded for this interview. Finish it or type 'new' when it is complete."
	noQuestions         = "I couldn't find any questions for these skills."
	noRecipient         = "No email available. Please log in again."
	noReporter          = "Reports are not available in this setup."
	noHistory           = "No past interviews. Complete one to build history!"
	emailFailed         = "Failed to send email. Try exporting the PDF."

	optionsMenu = `1. Review answers
2. Export PDF
3. Send results via email
4. View history
5. Start new interview`
)
