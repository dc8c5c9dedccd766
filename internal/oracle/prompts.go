package oracle

// Prompt templates for every structured judgement. Each template pins the
// exact JSON keys the caller validates; a response missing a key is treated
// as a failed call, never silently defaulted.

// #region gate-prompts

const domainCheckPrompt = `You are a grader assessing whether a user question falls within the specified %[1]s domain.
Your task is to determine if the question is directly related to %[1]s by considering the content and context of the question.
Give a binary score 'yes' or 'no' to indicate whether the domain is relevant to the question.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.

Here is the user question: %[2]s`

const rephrasePrompt = `If the follow-up question is already a standalone question or is not relevant to the last user question, return it exactly as it is.
If the follow-up question needs context from the chat history to be understood, rephrase it to be a standalone question.
Return a JSON object with a single key 'question' holding the standalone question, and no preamble or explanation.

Chat History:
%s

Follow-Up Question: %s`

const gradeDocumentPrompt = `You are a grader assessing relevance of a retrieved document to a user question.
Here is the retrieved document:

%s

If the document contains keywords related to the user question, grade it as relevant.
It does not need to be a stringent test. The goal is to filter out erroneous retrievals.
Give a binary score 'yes' or 'no' to indicate whether the document is relevant to the question.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.

Here is the user question: %s`

const classifyQuestionPrompt = `You are a classifier deciding whether a user question is an arithmetic task, i.e. a question whose answer requires computing a numeric result from numbers and operations such as addition, subtraction, multiplication or division.
Give a binary score 'yes' or 'no': 'yes' if the question is an arithmetic task, 'no' otherwise.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.

Here is the user question: %s`

// #endregion gate-prompts

// #region generation-prompts

const generateAnswerPrompt = `You are an assistant for question-answering tasks.
Use the following pieces of retrieved context to answer the question.
I will also provide you the chat history. If it is empty, ignore it; otherwise you may use it to answer the question.
If you don't know the answer, just say that you don't know.
Return a JSON object with the keys 'answer' and 'sources'. 'answer' is the answer to the user's question. 'sources' is the list of source identifiers of the context documents you used.

Context:
%s

Chat History:
%s

Question: %s`

const mathExprPrompt = `You are solving an arithmetic question step by step.
Use the following pieces of retrieved context if they are relevant.
Return a JSON object with the keys 'step_wise_reasoning', 'expr' and 'sources'.
'step_wise_reasoning' is a list of short reasoning steps.
'expr' is a single pure arithmetic expression using only numbers, the operators + - * / and parentheses. No variables, no words, no units.
'sources' is the list of source identifiers of the context documents you used, or an empty list.

Context:
%s

Question: %s`

const mathDirectPrompt = `You are solving an arithmetic question step by step.
Use the following pieces of retrieved context if they are relevant.
Return a JSON object with the keys 'step_wise_reasoning', 'solution' and 'sources'.
'step_wise_reasoning' is a list of short reasoning steps.
'solution' is the final stated solution to the question.
'sources' is the list of source identifiers of the context documents you used, or an empty list.

Context:
%s

Question: %s`

// #endregion generation-prompts

// #region verification-prompts

const groundingCheckPrompt = `You are a grader assessing whether an answer is grounded in / supported by a set of facts.
Here are the facts:
-------
%s
-------
Here is the answer: %s
Give a binary score 'yes' or 'no' to indicate whether the answer is grounded in / supported by the set of facts.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.`

const usefulnessCheckPrompt = `You are a grader assessing whether an answer is useful to resolve a question.
Here is the answer:
-------
%s
-------
Here is the question: %s
Give a binary score 'yes' or 'no' to indicate whether the answer is useful to resolve the question.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.`

// #endregion verification-prompts

// #region ingest-prompts

const domainDetectionPrompt = `You are a grader assessing the summarization and domain of a set of documents.
Here are the documents:
-------
%s
-------
First, provide a summary of the documents. Then, indicate the domain the documents belong to (e.g., sports, movies, tech).
Provide the summary and domain as a JSON object with keys 'summary' and 'domain' respectively, and no preamble or explanation.`

const domainComparePrompt = `You are a grader assessing whether a set of documents falls within a specified domain.
Here is the specified domain: %s
Here is the summary of the documents:
-------
%s
-------
Here is the domain you have identified from the documents: %s
Give a binary score 'yes' or 'no' to indicate whether the documents fall within the specified domain.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.`

// #endregion ingest-prompts
